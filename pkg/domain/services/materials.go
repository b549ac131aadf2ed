package services

import (
	"github.com/shopspring/decimal"
	"github.com/vsinha/jobshop/pkg/domain/entities"
)

// CompleteSets returns how many complete sets the quantities can build.
// A set needs composition[suffix] units of every listed variant, so the result is the minimum
// over the composition of floor(dash[suffix] / units). Entries with non-positive units are ignored.
// ok is false when the composition has no usable entries.
func CompleteSets(composition map[string]int64, dash entities.DashQuantities) (sets int64, ok bool) {
	dash = CleanDashQuantities(dash)
	first := true
	for suffix, units := range composition {
		if units <= 0 {
			continue
		}
		key := entities.CanonicalSuffix(suffix)
		if key == "" {
			continue
		}
		n := dash[key] / units
		if first || n < sets {
			sets = n
			first = false
		}
	}
	if first {
		return 0, false
	}
	return sets, true
}

// SetMultiplier returns the number of times per-set materials are consumed:
// complete sets when the part defines a set composition, otherwise the total requested units
func SetMultiplier(part *entities.Part, dash entities.DashQuantities) int64 {
	if part == nil {
		return CleanDashQuantities(dash).Total()
	}
	if sets, ok := CompleteSets(part.SetComposition, dash); ok {
		return sets
	}
	return CleanDashQuantities(dash).Total()
}

// CalculateMaterialRequirements returns the total quantity of every inventory item the
// requested quantities consume. Per-unit lines of each variant scale with that variant's
// quantity; part-level per-set lines scale with SetMultiplier. The map is rebuilt on every call.
func CalculateMaterialRequirements(part *entities.Part, dash entities.DashQuantities) entities.Requirements {
	requirements := make(entities.Requirements)
	if part == nil {
		return requirements
	}

	dash = CleanDashQuantities(dash)
	if dash.Total() == 0 {
		return requirements
	}

	for _, suffix := range sortedSuffixes(dash) {
		variant, ok := part.Variant(suffix)
		if !ok {
			continue
		}
		qty := decimal.NewFromInt(dash[suffix])
		for _, line := range variant.Materials {
			if line.IsPerSet() {
				continue
			}
			addRequirement(requirements, line, line.UsagePerUnit().Mul(qty))
		}
	}

	multiplier := SetMultiplier(part, dash)
	if multiplier > 0 {
		sets := decimal.NewFromInt(multiplier)
		for _, line := range part.Materials {
			if !line.IsPerSet() {
				continue
			}
			addRequirement(requirements, line, line.UsagePerUnit().Mul(sets))
		}
	}

	return requirements
}

func addRequirement(requirements entities.Requirements, line entities.MaterialLine, qty decimal.Decimal) {
	if line.InventoryID == "" || !qty.IsPositive() {
		return
	}
	existing, ok := requirements[line.InventoryID]
	if !ok {
		requirements[line.InventoryID] = entities.MaterialRequirement{
			InventoryID: line.InventoryID,
			Quantity:    qty,
			Unit:        line.Unit,
		}
		return
	}
	existing.Quantity = existing.Quantity.Add(qty)
	if existing.Unit == "" {
		existing.Unit = line.Unit
	}
	requirements[line.InventoryID] = existing
}
