package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
	"github.com/vsinha/jobshop/pkg/domain/services"
)

// SyncRequest carries a job's edited dash quantities. The part defaults to the job's catalog part.
type SyncRequest struct {
	Part           *entities.Part             `json:"part"`
	DashQuantities entities.RawDashQuantities `json:"dash_quantities"`
}

// StatusRequest carries a job's new status
type StatusRequest struct {
	Status string `json:"status"`
}

// SyncJob brings a job's inventory lines up to date and stores its dash quantities.
// A job that has already consumed its material answers 409.
func (h *Handler) SyncJob(c *gin.Context) {
	jobID := c.Param("id")

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	job, err := h.repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.fail(c, http.StatusInternalServerError, err)
		return
	}

	part, status, err := h.resolvePart(req.Part, job.PartID)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	// quantities are stored only once the sync has been accepted
	dash := services.NormalizeDashQuantities(req.DashQuantities)
	result, err := h.synchronizer.Sync(ctx, jobID, part, dash)
	if err != nil {
		h.fail(c, errorStatus(err), err)
		return
	}
	if err := h.repo.UpdateJobDashQuantities(ctx, jobID, dash); err != nil {
		h.fail(c, errorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateJobStatus changes a job's status, consuming or restoring stock as needed
func (h *Handler) UpdateJobStatus(c *gin.Context) {
	jobID := c.Param("id")

	var req StatusRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Status == "" {
		req.Status = c.Query("status")
	}

	newStatus, err := entities.ParseJobStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	result, err := h.status.ChangeStatus(c.Request.Context(), jobID, newStatus)
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusNotFound {
			c.JSON(status, gin.H{"error": "job not found"})
			return
		}
		h.fail(c, status, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetInventory returns every inventory item with its open allocation and availability
func (h *Handler) GetInventory(c *gin.Context) {
	snapshots, err := h.inventory.Snapshot(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}

	if c.Query("reorder") == "true" {
		filtered := make([]entities.InventorySnapshot, 0, len(snapshots))
		for _, s := range snapshots {
			if s.NeedsReorder {
				filtered = append(filtered, s)
			}
		}
		snapshots = filtered
	}
	c.JSON(http.StatusOK, snapshots)
}
