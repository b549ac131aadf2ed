package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/vsinha/jobshop/pkg/application/services/calculation"
	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/services"
	"github.com/vsinha/jobshop/pkg/infrastructure/metrics"
)

// CalculationRequest asks for the allocation and materials of a part at some dash quantities
type CalculationRequest struct {
	PartID         string                     `json:"part_id"`
	Part           *entities.Part             `json:"part"`
	DashQuantities entities.RawDashQuantities `json:"dash_quantities"`
}

// QuoteRequest asks for a customer quote. Rates left out use the configured defaults.
type QuoteRequest struct {
	PartID         string                     `json:"part_id"`
	Part           *entities.Part             `json:"part"`
	Quantity       int64                      `json:"quantity"`
	DashQuantities entities.RawDashQuantities `json:"dash_quantities"`
	LaborRate      *decimal.Decimal           `json:"labor_rate"`
	MachineRate    *decimal.Decimal           `json:"machine_rate"`
	MarkupPercent  *decimal.Decimal           `json:"markup_percent"`
}

// Calculate normalizes dash quantities and returns the allocation and material requirements
func (h *Handler) Calculate(c *gin.Context) {
	var req CalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	part, status, err := h.resolvePart(req.Part, req.PartID)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, calculation.Calculate(part, req.DashQuantities))
}

// Quote prices a part order against current inventory customer prices
func (h *Handler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity cannot be negative"})
		return
	}

	part, status, err := h.resolvePart(req.Part, req.PartID)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	items, err := h.repo.ListInventory(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}

	cfg := h.quoteDefaults
	if req.LaborRate != nil {
		cfg.LaborRate = *req.LaborRate
	}
	if req.MachineRate != nil {
		cfg.MachineRate = *req.MachineRate
	}
	if req.MarkupPercent != nil {
		cfg.MarkupPercent = *req.MarkupPercent
	}
	if cfg.LaborRate.IsNegative() || cfg.MachineRate.IsNegative() || cfg.MarkupPercent.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rates cannot be negative"})
		return
	}

	quote := services.CalculateQuote(services.QuoteRequest{
		Part:           part,
		Quantity:       req.Quantity,
		DashQuantities: services.NormalizeDashQuantities(req.DashQuantities),
	}, services.InventoryPrices(items), cfg)
	metrics.RecordQuote(quote != nil)

	if quote == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "part has no labor or material definition to quote"})
		return
	}
	c.JSON(http.StatusOK, quote)
}
