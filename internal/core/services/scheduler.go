package services

import (
	"context"
	"time"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/ports/driven"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/logger"
)

// historyKeep is how many results per task survive pruning.
const historyKeep = 100

// SyncRunner is the work a scheduled tick performs.
type SyncRunner func(ctx context.Context) (*domain.RunSummary, error)

// Scheduler runs the sync task on a recurring schedule, more frequently
// during business hours than off-hours. Task state and run history are
// persisted, so restarts resume the schedule instead of resetting it.
type Scheduler struct {
	store driven.SchedulerStore
	cfg   domain.SchedulerConfig
	run   SyncRunner

	// checkInterval is how often the loop polls for due tasks.
	checkInterval time.Duration

	stop chan struct{}
	done chan struct{}
}

// NewScheduler creates a scheduler. Call Start to begin execution.
func NewScheduler(store driven.SchedulerStore, cfg domain.SchedulerConfig, run SyncRunner) *Scheduler {
	return &Scheduler{
		store:         store,
		cfg:           cfg,
		run:           run,
		checkInterval: time.Minute,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start loads or creates the sync task and launches the schedule loop.
func (s *Scheduler) Start(ctx context.Context) error {
	task, err := s.store.GetTask(ctx, domain.TaskIDTicketSync)
	if err != nil {
		return err
	}
	if task == nil {
		task = &domain.ScheduledTask{
			ID:      domain.TaskIDTicketSync,
			Name:    "Ticket synchronisation",
			NextRun: time.Now().UTC(),
			Enabled: s.cfg.Enabled,
		}
		if err := s.store.SaveTask(ctx, task); err != nil {
			return err
		}
	}

	go s.loop(ctx)
	return nil
}

// Stop signals the loop to exit and waits for it.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs the task if it is enabled and due.
func (s *Scheduler) tick(ctx context.Context) {
	task, err := s.store.GetTask(ctx, domain.TaskIDTicketSync)
	if err != nil {
		logger.Error("scheduler: loading task: %v", err)
		return
	}
	if task == nil || !task.Enabled {
		return
	}

	now := time.Now().UTC()
	if now.Before(task.NextRun) {
		return
	}

	logger.Info("scheduler: starting scheduled sync")
	summary, runErr := s.run(ctx)
	ended := time.Now().UTC()

	result := &domain.TaskResult{
		TaskID:    task.ID,
		StartedAt: now,
		EndedAt:   ended,
		Success:   runErr == nil,
	}
	task.LastRun = now
	if runErr != nil {
		result.Error = runErr.Error()
		task.LastError = runErr.Error()
		logger.Error("scheduler: sync failed: %v", runErr)
	} else {
		result.TicketsProcessed = summary.Processed
		task.LastError = ""
		task.LastSuccess = ended
		logger.Info("scheduler: sync completed, %d tickets processed", summary.Processed)
	}

	// The next slot depends on the window the run ENDED in, so a run
	// crossing the business-hours boundary picks up the new cadence.
	task.NextRun = ended.Add(s.cfg.IntervalAt(ended))

	if err := s.store.RecordResult(ctx, result); err != nil {
		logger.Error("scheduler: recording result: %v", err)
	}
	if err := s.store.SaveTask(ctx, task); err != nil {
		logger.Error("scheduler: saving task: %v", err)
	}
	if err := s.store.PruneHistory(ctx, historyKeep); err != nil {
		logger.Error("scheduler: pruning history: %v", err)
	}
}
