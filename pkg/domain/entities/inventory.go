package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InventoryItem represents a stocked raw material or component
type InventoryItem struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Unit          string   `json:"unit"`
	InStock       Quantity `json:"in_stock"` // may go negative on over-consumption
	Disposed      Quantity `json:"disposed"`
	OnOrder       Quantity `json:"on_order"`
	ReorderPoint  Quantity `json:"reorder_point"`
	CustomerPrice Money    `json:"customer_price"`
}

// NewInventoryItem creates a validated InventoryItem
func NewInventoryItem(id, name, unit string, inStock Quantity) (*InventoryItem, error) {
	if id == "" {
		return nil, fmt.Errorf("inventory id cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("inventory name cannot be empty")
	}

	return &InventoryItem{
		ID:      id,
		Name:    name,
		Unit:    unit,
		InStock: inStock,
	}, nil
}

// Available returns inStock minus the quantity allocated to open jobs. The result is not clamped.
func (i InventoryItem) Available(allocated Quantity) Quantity {
	return i.InStock.Sub(allocated)
}

// DisplayAvailable returns the available quantity clamped at zero for presentation
func (i InventoryItem) DisplayAvailable(allocated Quantity) Quantity {
	return decimal.Max(i.Available(allocated), decimal.Zero)
}

// NeedsReorder reports whether available plus on-order stock has fallen to the reorder point
func (i InventoryItem) NeedsReorder(allocated Quantity) bool {
	if !i.ReorderPoint.IsPositive() {
		return false
	}
	return i.Available(allocated).Add(i.OnOrder).LessThanOrEqual(i.ReorderPoint)
}

// InventoryMutation is a stock adjustment produced by reconciliation
type InventoryMutation struct {
	InventoryID  string   `json:"inventory_id"`
	NewInStock   Quantity `json:"new_in_stock"`
	ChangeAmount Quantity `json:"change_amount"`
}

// ReconcileDirection selects whether a job's material is drawn from or returned to stock
type ReconcileDirection int

const (
	Consume ReconcileDirection = iota
	Restore
)

// String method for ReconcileDirection enum
func (d ReconcileDirection) String() string {
	switch d {
	case Consume:
		return "consume"
	case Restore:
		return "restore"
	default:
		return "unknown"
	}
}

// InventorySnapshot is the computed stock position of one inventory item
type InventorySnapshot struct {
	Item             InventoryItem `json:"item"`
	Allocated        Quantity      `json:"allocated"`
	Available        Quantity      `json:"available"`
	DisplayAvailable Quantity      `json:"display_available"`
	NeedsReorder     bool          `json:"needs_reorder"`
}
