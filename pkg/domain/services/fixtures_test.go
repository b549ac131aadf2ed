package services

import (
	"github.com/shopspring/decimal"
	"github.com/vsinha/jobshop/pkg/domain/entities"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func hours(s string) *entities.Hours {
	h := dec(s)
	return &h
}

// bracketKit is a two-variant kit: one -01 left bracket and two -02 spacers per set
func bracketKit() *entities.Part {
	return &entities.Part{
		ID:                 "BRKT-100",
		Name:               "Bracket kit",
		LaborHours:         dec("6"),
		RequiresCNC:        true,
		CNCTimeHours:       dec("2"),
		Requires3DPrint:    true,
		Printer3DTimeHours: dec("4"),
		SetComposition:     map[string]int64{"-01": 1, "-02": 2},
		Materials: []entities.MaterialLine{
			{InventoryID: "BOX-S", QuantityPerUnit: dec("1"), Unit: "ea", UsageType: entities.PerSet},
			{InventoryID: "AL-6061", QuantityPerUnit: dec("0.1"), Unit: "kg", UsageType: entities.PerSet},
		},
		Variants: []entities.PartVariant{
			{
				VariantSuffix: "-01",
				LaborHours:    hours("2"),
				Materials: []entities.MaterialLine{
					{InventoryID: "AL-6061", QuantityPerUnit: dec("0.25"), Unit: "kg", UsageType: entities.PerUnit},
					{InventoryID: "M4-SCREW", QuantityPerUnit: dec("4"), Unit: "ea"},
				},
			},
			{
				VariantSuffix: "02",
				Materials: []entities.MaterialLine{
					{InventoryID: "PLA", Quantity: dec("12.5"), Unit: "g", UsageType: entities.PerUnit},
					{InventoryID: "M4-SCREW", QuantityPerUnit: dec("2"), Unit: "ea"},
				},
			},
		},
	}
}
