package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/vsinha/jobshop/pkg/application/dto"
	"github.com/vsinha/jobshop/pkg/application/services/jobsync"
	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
	"github.com/vsinha/jobshop/pkg/domain/services"
	"go.uber.org/zap"
)

// jobEdits is the debounced editing session of one job and its latest requested quantities
type jobEdits struct {
	session *jobsync.Session

	mu   sync.Mutex
	seq  uint64
	dash entities.DashQuantities
}

// EditAccepted is the response to a scheduled edit
type EditAccepted struct {
	JobID    string `json:"job_id"`
	Sequence uint64 `json:"sequence"`
}

// ScheduleEdit queues a job's edited dash quantities. Edits arriving within the
// debounce window collapse into one sync pass, and only the latest edit's
// quantities are stored on the job.
func (h *Handler) ScheduleEdit(c *gin.Context) {
	jobID := c.Param("id")

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.repo.GetJob(c.Request.Context(), jobID)
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

	edits := h.editsFor(jobID)
	edits.mu.Lock()
	edits.seq = edits.session.Schedule(part, req.DashQuantities)
	edits.dash = services.NormalizeDashQuantities(req.DashQuantities)
	seq := edits.seq
	edits.mu.Unlock()

	c.JSON(http.StatusAccepted, EditAccepted{JobID: jobID, Sequence: seq})
}

func (h *Handler) editsFor(jobID string) *jobEdits {
	h.sessionsMu.Lock()
	defer h.sessionsMu.Unlock()

	if edits, ok := h.sessions[jobID]; ok {
		return edits
	}
	edits := &jobEdits{}
	edits.session = jobsync.NewSession(context.Background(), h.synchronizer, jobID, h.debounce,
		func(result *dto.SyncResult, err error) {
			h.storeEdit(jobID, edits, result, err)
		})
	h.sessions[jobID] = edits
	return edits
}

// storeEdit saves the quantities of the pass that completed, if it is still the latest edit
func (h *Handler) storeEdit(jobID string, edits *jobEdits, result *dto.SyncResult, err error) {
	if err != nil {
		h.logger.Warn("job edit sync failed", zap.String("job_id", jobID), zap.Error(err))
		return
	}
	if result == nil {
		return
	}
	edits.mu.Lock()
	defer edits.mu.Unlock()
	if result.Sequence != edits.seq {
		return
	}
	if err := h.repo.UpdateJobDashQuantities(context.Background(), jobID, edits.dash); err != nil {
		h.logger.Error("failed to store job dash quantities", zap.String("job_id", jobID), zap.Error(err))
	}
}
