package services

import (
	"github.com/shopspring/decimal"
	"github.com/vsinha/jobshop/pkg/domain/entities"
)

var hundred = decimal.NewFromInt(100)

// PriceLookup resolves the customer unit price of an inventory item
type PriceLookup interface {
	CustomerPrice(inventoryID string) (entities.Money, bool)
}

// PriceTable is a PriceLookup backed by a map
type PriceTable map[string]entities.Money

// CustomerPrice implements PriceLookup
func (t PriceTable) CustomerPrice(inventoryID string) (entities.Money, bool) {
	price, ok := t[inventoryID]
	return price, ok
}

// InventoryPrices builds a PriceTable from inventory items
func InventoryPrices(items []entities.InventoryItem) PriceTable {
	table := make(PriceTable, len(items))
	for _, item := range items {
		table[item.ID] = item.CustomerPrice
	}
	return table
}

// QuoteConfig holds the rates applied to a quote
type QuoteConfig struct {
	LaborRate     entities.Money `json:"labor_rate"`
	MachineRate   entities.Money `json:"machine_rate"` // zero = labor rate
	MarkupPercent entities.Money `json:"markup_percent"`
}

// QuoteRequest describes what to price. DashQuantities, when set, overrides the split derived from Quantity.
type QuoteRequest struct {
	Part           *entities.Part
	Quantity       int64
	DashQuantities entities.DashQuantities
}

// OrderDashQuantities derives per-variant quantities for an order.
// Kitted parts order Quantity complete sets; other parts order Quantity of every variant.
// A part without variants is ordered under the "-01" suffix.
func OrderDashQuantities(part *entities.Part, quantity int64) entities.DashQuantities {
	dash := make(entities.DashQuantities)
	if part == nil || quantity <= 0 {
		return dash
	}

	composition := make(entities.DashQuantities)
	for suffix, units := range part.SetComposition {
		if key := entities.CanonicalSuffix(suffix); key != "" && units > 0 {
			composition[key] += units
		}
	}
	if len(composition) > 0 {
		for suffix, units := range composition {
			dash[suffix] = units * quantity
		}
		return dash
	}

	if len(part.Variants) == 0 {
		dash[entities.CanonicalSuffix("01")] = quantity
		return dash
	}
	for _, variant := range part.Variants {
		if key := entities.CanonicalSuffix(variant.VariantSuffix); key != "" {
			dash[key] = quantity
		}
	}
	return dash
}

// CalculateQuote prices an order. It returns nil when the part has neither labor nor materials
// defined, or when nothing is ordered, so the caller can prompt for a definition instead of
// showing a zero quote.
func CalculateQuote(req QuoteRequest, prices PriceLookup, cfg QuoteConfig) *entities.Quote {
	part := req.Part
	if part == nil || (!part.HasLabor() && !part.HasMaterials()) {
		return nil
	}

	dash := CleanDashQuantities(req.DashQuantities)
	if len(dash) == 0 {
		dash = OrderDashQuantities(part, req.Quantity)
	}
	if dash.Total() == 0 {
		return nil
	}
	orderQty := req.Quantity
	if orderQty <= 0 {
		orderQty = dash.Total()
	}

	allocation := CalculateAllocation(part, dash)
	requirements := CalculateMaterialRequirements(part, dash)

	quote := &entities.Quote{
		PartID:               part.ID,
		OrderQuantity:        orderQty,
		DashQuantities:       dash,
		Lines:                make([]entities.QuoteLine, 0, len(requirements)),
		MaterialCostCustomer: decimal.Zero,
		MarkupPercent:        cfg.MarkupPercent,
	}

	for _, id := range requirements.InventoryIDs() {
		need := requirements[id]
		line := entities.QuoteLine{
			InventoryID: id,
			Quantity:    need.Quantity,
			Unit:        need.Unit,
			UnitPrice:   decimal.Zero,
			Cost:        decimal.Zero,
		}
		if prices != nil {
			if price, ok := prices.CustomerPrice(id); ok {
				line.UnitPrice = price
				line.Cost = price.Mul(need.Quantity)
			} else {
				line.PriceMissing = true
			}
		} else {
			line.PriceMissing = true
		}
		quote.Lines = append(quote.Lines, line)
		quote.MaterialCostCustomer = quote.MaterialCostCustomer.Add(line.Cost)
	}

	machineRate := cfg.MachineRate
	if machineRate.IsZero() {
		machineRate = cfg.LaborRate
	}

	quote.LaborHours = allocation.Totals.LaborHours
	quote.LaborCost = quote.LaborHours.Mul(cfg.LaborRate)
	quote.MachineHours = allocation.Totals.MachineTotal()
	quote.MachineCost = quote.MachineHours.Mul(machineRate)
	quote.Subtotal = quote.MaterialCostCustomer.Add(quote.LaborCost).Add(quote.MachineCost)
	quote.MarkupAmount = quote.Subtotal.Mul(cfg.MarkupPercent.Div(hundred))
	quote.Total = quote.Subtotal.Add(quote.MarkupAmount)
	quote.UnitPrice = quote.Total.Div(decimal.NewFromInt(orderQty))

	return quote
}
