package services

import (
	"fmt"
	"sort"

	"github.com/vsinha/jobshop/pkg/domain/entities"
)

// PartValidator checks a part definition for inconsistencies before it is used for costing
type PartValidator struct{}

// NewPartValidator creates a new part validator
func NewPartValidator() *PartValidator {
	return &PartValidator{}
}

// ValidationResult contains the results of part validation.
// Errors make the definition unusable; warnings are lines the calculators will ignore.
type ValidationResult struct {
	DuplicateSuffixes []string
	UnknownSetMembers []string
	Errors            []string
	Warnings          []string
}

// Valid reports whether no errors were found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// ValidatePart performs validation on a part and its variants
func (v *PartValidator) ValidatePart(part *entities.Part) *ValidationResult {
	result := &ValidationResult{
		DuplicateSuffixes: make([]string, 0),
		UnknownSetMembers: make([]string, 0),
		Errors:            make([]string, 0),
		Warnings:          make([]string, 0),
	}

	if part == nil {
		result.Errors = append(result.Errors, "part is nil")
		return result
	}
	if part.ID == "" {
		result.Errors = append(result.Errors, "part id cannot be empty")
	}
	if part.LaborHours.IsNegative() {
		result.Errors = append(result.Errors, fmt.Sprintf("labor hours cannot be negative, got %s", part.LaborHours))
	}
	if part.RequiresCNC && part.CNCTimeHours.IsNegative() {
		result.Errors = append(result.Errors, fmt.Sprintf("cnc time cannot be negative, got %s", part.CNCTimeHours))
	}
	if part.Requires3DPrint && part.Printer3DTimeHours.IsNegative() {
		result.Errors = append(result.Errors, fmt.Sprintf("3d print time cannot be negative, got %s", part.Printer3DTimeHours))
	}

	seen := make(map[string]bool)
	for _, variant := range part.Variants {
		suffix := entities.CanonicalSuffix(variant.VariantSuffix)
		if suffix == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("variant %q has an empty suffix", variant.ID))
			continue
		}
		if seen[suffix] {
			result.DuplicateSuffixes = append(result.DuplicateSuffixes, suffix)
		}
		seen[suffix] = true

		if variant.LaborHours != nil && variant.LaborHours.IsNegative() {
			result.Errors = append(result.Errors, fmt.Sprintf("variant %s labor hours cannot be negative", suffix))
		}
		for _, line := range variant.Materials {
			v.checkLine(result, suffix, line)
			if line.IsPerSet() {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("variant %s: per-set line for %s is ignored, per-set materials belong on the part", suffix, line.InventoryID))
			}
		}
	}

	for _, line := range part.Materials {
		v.checkLine(result, "part", line)
		if !line.IsPerSet() {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("part: per-unit line for %s is ignored, per-unit materials belong on a variant", line.InventoryID))
		}
	}

	for suffix, units := range part.SetComposition {
		key := entities.CanonicalSuffix(suffix)
		if units <= 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("set composition %s has non-positive units %d", suffix, units))
			continue
		}
		if len(part.Variants) > 0 && !seen[key] {
			result.UnknownSetMembers = append(result.UnknownSetMembers, key)
		}
	}
	sort.Strings(result.UnknownSetMembers)

	if len(result.DuplicateSuffixes) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Duplicate variant suffixes found: %v", result.DuplicateSuffixes))
	}
	if len(result.UnknownSetMembers) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Set composition references undefined variants: %v", result.UnknownSetMembers))
	}

	return result
}

func (v *PartValidator) checkLine(result *ValidationResult, owner string, line entities.MaterialLine) {
	if line.InventoryID == "" {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: material line without inventory id is ignored", owner))
	}
	if line.UsagePerUnit().IsNegative() {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: negative usage for %s", owner, line.InventoryID))
	}
}
