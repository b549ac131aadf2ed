package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/vsinha/jobshop/pkg/domain/entities"
)

func TestCalculate_NormalizesBeforeCalculating(t *testing.T) {
	labor := decimal.NewFromInt(2)
	part := &entities.Part{
		ID:           "BRKT-100",
		LaborHours:   decimal.NewFromInt(6),
		RequiresCNC:  true,
		CNCTimeHours: decimal.NewFromInt(2),
		Variants: []entities.PartVariant{
			{VariantSuffix: "-01", LaborHours: &labor, Materials: []entities.MaterialLine{
				{InventoryID: "AL", QuantityPerUnit: decimal.RequireFromString("0.25"), Unit: "kg"},
			}},
			{VariantSuffix: "-02"},
		},
	}

	result := Calculate(part, entities.RawDashQuantities{"01": "2", "-02": 4.9, "-03": -1})

	if len(result.DashQuantities) != 2 || result.DashQuantities["-01"] != 2 || result.DashQuantities["-02"] != 4 {
		t.Fatalf("Unexpected dash quantities: %v", result.DashQuantities)
	}
	if result.SetMultiplier != 6 {
		t.Errorf("Expected multiplier 6 without set composition, got %d", result.SetMultiplier)
	}
	if !result.Allocation.Totals.LaborHours.Equal(decimal.NewFromInt(28)) {
		t.Errorf("Expected 28 labor hours, got %s", result.Allocation.Totals.LaborHours)
	}
	if !result.Requirements["AL"].Quantity.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("Expected AL 0.5, got %s", result.Requirements["AL"].Quantity)
	}
}

func TestCalculate_NilPart(t *testing.T) {
	result := Calculate(nil, entities.RawDashQuantities{"-01": 3})

	if result.PartID != "" {
		t.Errorf("Expected empty part id, got %q", result.PartID)
	}
	if result.DashQuantities["-01"] != 3 {
		t.Errorf("Expected dash quantities to be normalized, got %v", result.DashQuantities)
	}
	if !result.Allocation.Totals.LaborHours.IsZero() {
		t.Errorf("Expected no labor, got %s", result.Allocation.Totals.LaborHours)
	}
	if len(result.Requirements) != 0 {
		t.Errorf("Expected no requirements, got %v", result.Requirements)
	}
}
