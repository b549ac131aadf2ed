package jobsync

import (
	"context"
	"sync"
	"time"

	"github.com/vsinha/jobshop/pkg/application/dto"
	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/services"
	"github.com/vsinha/jobshop/pkg/infrastructure/metrics"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last edit before a sync pass runs
const DefaultDebounce = time.Second

// ReloadFunc receives the outcome of the latest sync pass of a session
type ReloadFunc func(result *dto.SyncResult, err error)

type pendingSync struct {
	seq  uint64
	part *entities.Part
	dash entities.DashQuantities
}

// Session debounces dash quantity edits for one job.
//
// Every Schedule call cancels the pending timer and takes a new sequence number.
// A pass superseded while in flight has its context cancelled, and a pass whose
// sequence is no longer the latest when it completes is dropped without calling OnReload.
type Session struct {
	synchronizer *Synchronizer
	jobID        string
	window       time.Duration
	onReload     ReloadFunc
	logger       *zap.Logger

	// ctx bounds the passes started by the timer
	ctx context.Context

	mu        sync.Mutex
	timer     *time.Timer
	seq       uint64
	pending   *pendingSync
	cancelRun context.CancelFunc
	running   sync.WaitGroup
}

// NewSession creates a debounced session for a job. A zero window uses DefaultDebounce.
func NewSession(
	ctx context.Context,
	synchronizer *Synchronizer,
	jobID string,
	window time.Duration,
	onReload ReloadFunc,
) *Session {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Session{
		synchronizer: synchronizer,
		jobID:        jobID,
		window:       window,
		onReload:     onReload,
		logger:       synchronizer.logger.With(zap.String("job_id", jobID)),
		ctx:          ctx,
	}
}

// Schedule records an edit. The raw quantities are normalized immediately.
// It returns the sequence number assigned to the edit.
func (s *Session) Schedule(part *entities.Part, raw entities.RawDashQuantities) uint64 {
	dash := services.NormalizeDashQuantities(raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}
	s.supersedeLocked()
	s.pending = &pendingSync{seq: seq, part: part, dash: dash}
	s.timer = time.AfterFunc(s.window, func() { s.fire(seq) })
	return seq
}

// Cancel drops any pending edit and marks in-flight passes as stale
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.seq++
	s.supersedeLocked()
}

// Flush runs the pending edit now, if there is one, and returns its result.
// It returns nil, nil when nothing is pending.
func (s *Session) Flush(ctx context.Context) (*dto.SyncResult, error) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	req := s.pending
	s.pending = nil
	if req == nil {
		s.mu.Unlock()
		return nil, nil
	}
	runCtx, cancel := s.startLocked(ctx)
	s.mu.Unlock()

	defer s.running.Done()
	defer cancel()
	return s.run(runCtx, req)
}

// Sequence returns the latest sequence number issued
func (s *Session) Sequence() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Wait blocks until every started pass has finished
func (s *Session) Wait() {
	s.running.Wait()
}

func (s *Session) fire(seq uint64) {
	s.mu.Lock()
	req := s.pending
	if req == nil || req.seq != seq {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.timer = nil
	runCtx, cancel := s.startLocked(s.ctx)
	s.mu.Unlock()

	defer s.running.Done()
	defer cancel()
	s.run(runCtx, req)
}

func (s *Session) startLocked(parent context.Context) (context.Context, context.CancelFunc) {
	s.supersedeLocked()
	ctx, cancel := context.WithCancel(parent)
	s.cancelRun = cancel
	s.running.Add(1)
	return ctx, cancel
}

func (s *Session) supersedeLocked() {
	if s.cancelRun != nil {
		s.cancelRun()
		s.cancelRun = nil
	}
}

func (s *Session) run(ctx context.Context, req *pendingSync) (*dto.SyncResult, error) {
	result, err := s.synchronizer.Sync(ctx, s.jobID, req.part, req.dash)
	if result != nil {
		result.Sequence = req.seq
	}
	if req.seq != s.Sequence() {
		metrics.StaleCompletionsTotal.Inc()
		s.logger.Debug("discarding stale sync completion", zap.Uint64("sequence", req.seq), zap.Error(err))
		return result, err
	}
	if err != nil {
		s.logger.Error("sync pass failed", zap.Uint64("sequence", req.seq), zap.Error(err))
	}
	if s.onReload != nil {
		s.onReload(result, err)
	}
	return result, err
}
