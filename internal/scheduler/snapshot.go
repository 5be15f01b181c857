package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/librarian/internal/catalog"
)

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule checks a five-field cron expression or a descriptor such
// as @hourly.
func ValidateSchedule(schedule string) error {
	_, err := scheduleParser.Parse(schedule)
	return err
}

type SnapshotSource interface {
	Snapshot() catalog.Snapshot
}

type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, snap catalog.Snapshot) error
}

// RunStatus describes the last scheduled save.
type RunStatus struct {
	At       time.Time     `json:"at"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// SnapshotScheduler periodically writes the catalog to the database.
type SnapshotScheduler struct {
	source   SnapshotSource
	saver    SnapshotSaver
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
	lastRun    *RunStatus
}

func NewSnapshotScheduler(source SnapshotSource, saver SnapshotSaver, schedule string) *SnapshotScheduler {
	return &SnapshotScheduler{
		source:   source,
		saver:    saver,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(scheduleParser)),
	}
}

// Start schedules the save job. Cancelling ctx stops the scheduler.
func (s *SnapshotScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.RunNow(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule snapshot job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("[SNAPSHOT] Scheduler started with schedule '%s'. Next run: %v", s.schedule, s.cron.Entry(entryID).Next)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running save to finish.
func (s *SnapshotScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.mu.Unlock()

	// A running job takes the lock to record its status, so wait unlocked.
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	if cancel != nil {
		cancel()
	}

	log.Printf("[SNAPSHOT] Scheduler stopped")
}

func (s *SnapshotScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next save will occur, or nil when stopped.
func (s *SnapshotScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}

// LastRun returns the outcome of the most recent save, or nil.
func (s *SnapshotScheduler) LastRun() *RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastRun == nil {
		return nil
	}
	status := *s.lastRun
	return &status
}

// RunNow saves a snapshot synchronously.
func (s *SnapshotScheduler) RunNow(ctx context.Context) error {
	start := time.Now()
	err := s.saver.SaveSnapshot(ctx, s.source.Snapshot())

	status := &RunStatus{At: start, Duration: time.Since(start)}
	if err != nil {
		status.Error = err.Error()
		log.Printf("[SNAPSHOT] Scheduled save failed: %v", err)
	}

	s.mu.Lock()
	s.lastRun = status
	s.mu.Unlock()

	return err
}
