package entities

import "sort"

// MachineHours holds per-unit machine time for one variant
type MachineHours struct {
	CNCHoursPerUnit       Hours `json:"cnc_hours_per_unit"`
	Printer3DHoursPerUnit Hours `json:"printer_3d_hours_per_unit"`
}

// AllocationTotals holds job-wide labor and machine time
type AllocationTotals struct {
	LaborHours     Hours `json:"labor_hours"`
	CNCHours       Hours `json:"cnc_hours"`
	Printer3DHours Hours `json:"printer_3d_hours"`
}

// MachineTotal returns CNC and 3D print hours combined
func (t AllocationTotals) MachineTotal() Hours {
	return t.CNCHours.Add(t.Printer3DHours)
}

// AllocationResult is the labor and machine split across requested variants
type AllocationResult struct {
	LaborPerUnit   map[string]Hours        `json:"labor_per_unit"`
	MachinePerUnit map[string]MachineHours `json:"machine_per_unit"`
	Totals         AllocationTotals        `json:"totals"`
}

// MaterialRequirement is the total quantity of one inventory item a job requires
type MaterialRequirement struct {
	InventoryID string   `json:"inventory_id"`
	Quantity    Quantity `json:"quantity"`
	Unit        string   `json:"unit"`
}

// Requirements maps inventory ids to what the current dash quantities consume
type Requirements map[string]MaterialRequirement

// InventoryIDs returns the inventory ids in sorted order
func (r Requirements) InventoryIDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// QuoteLine is the customer cost of one material in a quote
type QuoteLine struct {
	InventoryID  string   `json:"inventory_id"`
	Quantity     Quantity `json:"quantity"`
	Unit         string   `json:"unit"`
	UnitPrice    Money    `json:"unit_price"`
	Cost         Money    `json:"cost"`
	PriceMissing bool     `json:"price_missing,omitempty"`
}

// Quote is a customer-facing price estimate for a part order
type Quote struct {
	PartID               string         `json:"part_id"`
	OrderQuantity        int64          `json:"order_quantity"`
	DashQuantities       DashQuantities `json:"dash_quantities"`
	Lines                []QuoteLine    `json:"lines"`
	MaterialCostCustomer Money          `json:"material_cost_customer"`
	LaborHours           Hours          `json:"labor_hours"`
	LaborCost            Money          `json:"labor_cost"`
	MachineHours         Hours          `json:"machine_hours"`
	MachineCost          Money          `json:"machine_cost"`
	Subtotal             Money          `json:"subtotal"`
	MarkupPercent        Money          `json:"markup_percent"`
	MarkupAmount         Money          `json:"markup_amount"`
	Total                Money          `json:"total"`
	UnitPrice            Money          `json:"unit_price"`
}
