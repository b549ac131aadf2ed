// Package calculation runs the pure calculators for a part at a set of dash quantities.
package calculation

import (
	"github.com/vsinha/jobshop/pkg/application/dto"
	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/services"
)

// Calculate normalizes raw dash quantities and derives the labor, machine and material figures
func Calculate(part *entities.Part, raw entities.RawDashQuantities) dto.CalculationResult {
	dash := services.NormalizeDashQuantities(raw)
	var partID string
	if part != nil {
		partID = part.ID
	}
	return dto.CalculationResult{
		PartID:         partID,
		DashQuantities: dash,
		SetMultiplier:  services.SetMultiplier(part, dash),
		Allocation:     services.CalculateAllocation(part, dash),
		Requirements:   services.CalculateMaterialRequirements(part, dash),
	}
}
