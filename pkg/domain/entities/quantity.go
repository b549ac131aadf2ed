package entities

import "github.com/shopspring/decimal"

// Quantity represents an amount of material in the unit of measure of its inventory item.
// Decimal arithmetic keeps stock adjustments exactly reversible.
type Quantity = decimal.Decimal

// Hours represents labor or machine time
type Hours = decimal.Decimal

// Money represents a currency amount
type Money = decimal.Decimal
