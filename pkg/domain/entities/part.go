package entities

import (
	"fmt"
	"math"
	"strings"
)

// UsageType describes how a bill-of-materials line is consumed
type UsageType string

const (
	// PerUnit lines are consumed once for every unit produced
	PerUnit UsageType = "per_unit"
	// PerSet lines are consumed once for every complete set assembled
	PerSet UsageType = "per_set"
)

// String method for UsageType
func (u UsageType) String() string {
	if u == "" {
		return string(PerUnit)
	}
	return string(u)
}

// MaterialLine represents a single bill-of-materials entry referencing an inventory item
type MaterialLine struct {
	InventoryID     string    `json:"inventory_id"`
	QuantityPerUnit Quantity  `json:"quantity_per_unit"`
	Quantity        Quantity  `json:"quantity"` // legacy field, used when QuantityPerUnit is zero
	Unit            string    `json:"unit"`
	UsageType       UsageType `json:"usage_type"`
}

// NewMaterialLine creates a validated MaterialLine
func NewMaterialLine(inventoryID string, quantityPerUnit Quantity, unit string, usage UsageType) (*MaterialLine, error) {
	if inventoryID == "" {
		return nil, fmt.Errorf("inventory id cannot be empty")
	}
	if quantityPerUnit.IsNegative() {
		return nil, fmt.Errorf("quantity per unit cannot be negative, got %s", quantityPerUnit)
	}
	if usage != "" && usage != PerUnit && usage != PerSet {
		return nil, fmt.Errorf("unknown usage type: %s", usage)
	}
	if usage == "" {
		usage = PerUnit
	}

	return &MaterialLine{
		InventoryID:     inventoryID,
		QuantityPerUnit: quantityPerUnit,
		Unit:            unit,
		UsageType:       usage,
	}, nil
}

// IsPerSet reports whether the line is consumed per complete set
func (m MaterialLine) IsPerSet() bool {
	return m.UsageType == PerSet
}

// UsagePerUnit returns the quantity consumed per unit (or per set), falling back to the legacy field
func (m MaterialLine) UsagePerUnit() Quantity {
	if !m.QuantityPerUnit.IsZero() {
		return m.QuantityPerUnit
	}
	return m.Quantity
}

// PartVariant represents one dash-numbered variant of a part
type PartVariant struct {
	ID            string         `json:"id"`
	PartID        string         `json:"part_id"`
	VariantSuffix string         `json:"variant_suffix"`
	LaborHours    *Hours         `json:"labor_hours,omitempty"` // nil = use the part's base labor
	Materials     []MaterialLine `json:"materials,omitempty"`
}

// Part represents a manufactured part and its production definition
type Part struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	LaborHours         Hours            `json:"labor_hours"`
	RequiresCNC        bool             `json:"requires_cnc"`
	CNCTimeHours       Hours            `json:"cnc_time_hours"`
	Requires3DPrint    bool             `json:"requires_3d_print"`
	Printer3DTimeHours Hours            `json:"printer_3d_time_hours"`
	SetComposition     map[string]int64 `json:"set_composition,omitempty"` // variant suffix -> units per set
	Materials          []MaterialLine   `json:"materials,omitempty"`       // part level, per set
	Variants           []PartVariant    `json:"variants,omitempty"`
}

// Variant returns the variant with the given suffix, comparing canonical suffixes
func (p *Part) Variant(suffix string) (*PartVariant, bool) {
	want := CanonicalSuffix(suffix)
	if want == "" {
		return nil, false
	}
	for i := range p.Variants {
		if CanonicalSuffix(p.Variants[i].VariantSuffix) == want {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// HasMaterials reports whether any material line is defined on the part or its variants
func (p *Part) HasMaterials() bool {
	if len(p.Materials) > 0 {
		return true
	}
	for _, v := range p.Variants {
		if len(v.Materials) > 0 {
			return true
		}
	}
	return false
}

// HasLabor reports whether the part or any variant defines positive labor hours
func (p *Part) HasLabor() bool {
	if p.LaborHours.IsPositive() {
		return true
	}
	for _, v := range p.Variants {
		if v.LaborHours != nil && v.LaborHours.IsPositive() {
			return true
		}
	}
	return false
}

// DashQuantities maps canonical variant suffixes to requested unit counts
type DashQuantities map[string]int64

// Total returns the total requested units across all variants.
// The sum saturates at the int64 bounds instead of wrapping.
func (d DashQuantities) Total() int64 {
	var total int64
	for _, qty := range d {
		switch {
		case qty > 0 && total > math.MaxInt64-qty:
			total = math.MaxInt64
		case qty < 0 && total < math.MinInt64-qty:
			total = math.MinInt64
		default:
			total += qty
		}
	}
	return total
}

// RawDashQuantities holds user-entered quantities before normalization.
// Values may be numbers, numeric strings or nil.
type RawDashQuantities map[string]any

// CanonicalSuffix folds a dash code into the form "-NN".
// "01", "-01", " -01 " and "1" all map to "-01"; non-numeric codes are upper-cased.
func CanonicalSuffix(suffix string) string {
	s := strings.ToUpper(strings.TrimSpace(suffix))
	s = strings.TrimLeft(s, "-")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		s = "0" + s
	}
	return "-" + s
}
