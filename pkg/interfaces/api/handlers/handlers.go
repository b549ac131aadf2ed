package handlers

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vsinha/jobshop/pkg/application/services/inventory"
	"github.com/vsinha/jobshop/pkg/application/services/jobstatus"
	"github.com/vsinha/jobshop/pkg/application/services/jobsync"
	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
	"github.com/vsinha/jobshop/pkg/domain/services"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/records"
	"go.uber.org/zap"
)

// PartCatalog resolves part definitions by id
type PartCatalog interface {
	Part(id string) (*entities.Part, bool)
}

// Dependencies holds the services the handlers call
type Dependencies struct {
	Store         repositories.RecordStore
	Catalog       PartCatalog
	Synchronizer  *jobsync.Synchronizer
	Status        *jobstatus.Service
	Inventory     *inventory.Service
	QuoteDefaults services.QuoteConfig
	Debounce      time.Duration // quiet period of job edit sessions, zero uses jobsync.DefaultDebounce
	Logger        *zap.Logger
}

// Handler represents the API handlers
type Handler struct {
	repo          *records.Repository
	catalog       PartCatalog
	synchronizer  *jobsync.Synchronizer
	status        *jobstatus.Service
	inventory     *inventory.Service
	quoteDefaults services.QuoteConfig
	debounce      time.Duration
	logger        *zap.Logger

	sessionsMu sync.Mutex
	sessions   map[string]*jobEdits
}

// NewHandler creates a new Handler
func NewHandler(deps Dependencies) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		repo:          records.NewRepository(deps.Store),
		catalog:       deps.Catalog,
		synchronizer:  deps.Synchronizer,
		status:        deps.Status,
		inventory:     deps.Inventory,
		quoteDefaults: deps.QuoteDefaults,
		debounce:      deps.Debounce,
		logger:        logger,
		sessions:      make(map[string]*jobEdits),
	}
}

var errPartRequired = errors.New("part or part_id is required")

// resolvePart prefers an inline definition over a catalog lookup
func (h *Handler) resolvePart(inline *entities.Part, partID string) (*entities.Part, int, error) {
	if inline != nil {
		return inline, http.StatusOK, nil
	}
	if partID == "" {
		return nil, http.StatusBadRequest, errPartRequired
	}
	if h.catalog != nil {
		if part, ok := h.catalog.Part(partID); ok {
			return part, http.StatusOK, nil
		}
	}
	return nil, http.StatusNotFound, errors.New("part not found: " + partID)
}

// fail writes an error response, logging server errors
func (h *Handler) fail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// errorStatus maps service errors onto HTTP statuses
func errorStatus(err error) int {
	switch {
	case errors.Is(err, jobsync.ErrJobNotFound), errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrUnknownJobStatus):
		return http.StatusBadRequest
	case errors.Is(err, jobsync.ErrJobConsumed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
