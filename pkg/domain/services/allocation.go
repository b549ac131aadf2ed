package services

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vsinha/jobshop/pkg/domain/entities"
)

// CalculateAllocation splits labor and machine time across the requested variants.
//
// Labor is per unit: a variant's override applies when set, otherwise the part's base hours.
// CNC and 3D print time are part-level totals for one production run. They are counted once
// per job and shared equally between the distinct requested variants for reporting, independent
// of how many units each variant has.
func CalculateAllocation(part *entities.Part, dash entities.DashQuantities) entities.AllocationResult {
	result := entities.AllocationResult{
		LaborPerUnit:   make(map[string]entities.Hours),
		MachinePerUnit: make(map[string]entities.MachineHours),
		Totals: entities.AllocationTotals{
			LaborHours:     decimal.Zero,
			CNCHours:       decimal.Zero,
			Printer3DHours: decimal.Zero,
		},
	}
	if part == nil {
		return result
	}

	dash = CleanDashQuantities(dash)
	if len(dash) == 0 {
		return result
	}

	suffixes := sortedSuffixes(dash)

	for _, suffix := range suffixes {
		labor := part.LaborHours
		if variant, ok := part.Variant(suffix); ok && variant.LaborHours != nil {
			labor = *variant.LaborHours
		}
		result.LaborPerUnit[suffix] = labor
		result.Totals.LaborHours = result.Totals.LaborHours.Add(labor.Mul(decimal.NewFromInt(dash[suffix])))
	}

	cncTotal := decimal.Zero
	if part.RequiresCNC && part.CNCTimeHours.IsPositive() {
		cncTotal = part.CNCTimeHours
	}
	printTotal := decimal.Zero
	if part.Requires3DPrint && part.Printer3DTimeHours.IsPositive() {
		printTotal = part.Printer3DTimeHours
	}

	variantCount := decimal.NewFromInt(int64(len(suffixes)))
	machine := entities.MachineHours{
		CNCHoursPerUnit:       cncTotal.Div(variantCount),
		Printer3DHoursPerUnit: printTotal.Div(variantCount),
	}
	for _, suffix := range suffixes {
		result.MachinePerUnit[suffix] = machine
	}

	result.Totals.CNCHours = cncTotal
	result.Totals.Printer3DHours = printTotal

	return result
}

func sortedSuffixes(dash entities.DashQuantities) []string {
	suffixes := make([]string, 0, len(dash))
	for suffix := range dash {
		suffixes = append(suffixes, suffix)
	}
	sort.Strings(suffixes)
	return suffixes
}
