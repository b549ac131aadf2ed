// Package jobsync keeps a job's recorded inventory lines in step with the
// material requirements of its current dash quantities.
package jobsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/jobshop/pkg/application/dto"
	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
	"github.com/vsinha/jobshop/pkg/domain/services"
	"github.com/vsinha/jobshop/pkg/infrastructure/events"
	"github.com/vsinha/jobshop/pkg/infrastructure/metrics"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/records"
	"go.uber.org/zap"
)

// ErrJobNotFound is returned when the job being synchronized does not exist
var ErrJobNotFound = errors.New("job not found")

// ErrJobConsumed is returned when the job has already drawn its lines from stock.
// Changing those lines would make a later restore put back a different quantity.
var ErrJobConsumed = errors.New("job has consumed its material")

// DefaultEpsilon is the quantity difference below which a line is left alone
var DefaultEpsilon = decimal.New(1, -4)

// Config holds synchronizer settings
type Config struct {
	// Epsilon tolerates rounding noise when comparing stored and required quantities
	Epsilon decimal.Decimal
	// Policy decides which statuses have consumed material. nil uses entities.DefaultStatusPolicy.
	Policy *entities.StatusPolicy
}

// Synchronizer writes job inventory lines through a record store
type Synchronizer struct {
	repo       *records.Repository
	config     Config
	logger     *zap.Logger
	eventStore events.EventStore
}

// NewSynchronizer creates a synchronizer. eventStore may be nil.
func NewSynchronizer(
	store repositories.RecordStore,
	config Config,
	logger *zap.Logger,
	eventStore events.EventStore,
) *Synchronizer {
	if config.Epsilon.IsZero() {
		config.Epsilon = DefaultEpsilon
	}
	if config.Policy == nil {
		policy := entities.DefaultStatusPolicy()
		config.Policy = &policy
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		repo:       records.NewRepository(store),
		config:     config,
		logger:     logger,
		eventStore: eventStore,
	}
}

// Sync brings the job's lines up to the requirements of part at dash.
//
// Lines whose quantity differs by more than the epsilon are updated and missing lines are created.
// Lines for items the part no longer requires are left untouched so manual additions survive.
// A failed line write is logged and reported in the result without undoing the other writes.
// Jobs in a material-consuming status are refused with ErrJobConsumed.
func (s *Synchronizer) Sync(
	ctx context.Context,
	jobID string,
	part *entities.Part,
	dash entities.DashQuantities,
) (*dto.SyncResult, error) {
	start := time.Now()
	result, err := s.sync(ctx, jobID, part, dash)
	metrics.RecordSync(err, time.Since(start))
	return result, err
}

func (s *Synchronizer) sync(
	ctx context.Context,
	jobID string,
	part *entities.Part,
	dash entities.DashQuantities,
) (*dto.SyncResult, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}
		return nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	if s.config.Policy.IsConsuming(job.Status) {
		return nil, fmt.Errorf("%w: %s is %s", ErrJobConsumed, jobID, job.Status)
	}

	existing, err := s.repo.ListJobLines(ctx, jobID)
	if err != nil {
		return nil, err
	}
	byInventory := make(map[string]entities.JobInventoryLine, len(existing))
	for _, line := range existing {
		if _, seen := byInventory[line.InventoryID]; !seen {
			byInventory[line.InventoryID] = line
		}
	}

	required := services.CalculateMaterialRequirements(part, services.CleanDashQuantities(dash))
	result := &dto.SyncResult{JobID: jobID}

	for _, inventoryID := range required.InventoryIDs() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		req := required[inventoryID]

		line, ok := byInventory[inventoryID]
		if !ok {
			s.create(ctx, result, jobID, req)
			continue
		}
		if line.Quantity.Sub(req.Quantity).Abs().LessThanOrEqual(s.config.Epsilon) {
			result.Unchanged = append(result.Unchanged, inventoryID)
			continue
		}
		s.update(ctx, result, line, req)
	}

	s.logger.Debug("job inventory synchronized",
		zap.String("job_id", jobID),
		zap.Int("created", len(result.Created)),
		zap.Int("updated", len(result.Updated)),
		zap.Int("unchanged", len(result.Unchanged)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

func (s *Synchronizer) create(ctx context.Context, result *dto.SyncResult, jobID string, req entities.MaterialRequirement) {
	line, err := s.repo.CreateJobLine(ctx, entities.JobInventoryLine{
		JobID:       jobID,
		InventoryID: req.InventoryID,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
	})
	if err != nil {
		s.fail(result, jobID, req, err)
		return
	}
	result.Created = append(result.Created, line)
	metrics.RecordLineWrite(metrics.OutcomeCreated)
	s.publish(jobID, events.NewJobInventoryLineCreatedEvent(line))
}

func (s *Synchronizer) update(ctx context.Context, result *dto.SyncResult, line entities.JobInventoryLine, req entities.MaterialRequirement) {
	previous := line.Quantity
	line.Quantity = req.Quantity
	if req.Unit != "" {
		line.Unit = req.Unit
	}
	if err := s.repo.UpdateJobLine(ctx, line); err != nil {
		s.fail(result, line.JobID, req, err)
		return
	}
	result.Updated = append(result.Updated, line)
	metrics.RecordLineWrite(metrics.OutcomeUpdated)
	s.publish(line.JobID, events.NewJobInventoryLineUpdatedEvent(line, previous))
}

func (s *Synchronizer) fail(result *dto.SyncResult, jobID string, req entities.MaterialRequirement, err error) {
	s.logger.Warn("failed to write job inventory line",
		zap.String("job_id", jobID),
		zap.String("inventory_id", req.InventoryID),
		zap.String("quantity", req.Quantity.String()),
		zap.Error(err))
	result.Failed = append(result.Failed, dto.LineFailure{
		InventoryID: req.InventoryID,
		Quantity:    req.Quantity,
		Error:       err.Error(),
	})
	metrics.RecordLineWrite(metrics.OutcomeFailed)
	s.publish(jobID, events.NewJobInventoryLineFailedEvent(jobID, req, err))
}

func (s *Synchronizer) publish(jobID string, event events.Event) {
	if s.eventStore == nil {
		return
	}
	if err := s.eventStore.AppendEvent(jobID, event); err != nil {
		s.logger.Warn("failed to publish event", zap.String("event_type", event.Type()), zap.Error(err))
	}
}
