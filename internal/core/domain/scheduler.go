package domain

import "time"

// ScheduledTask represents a recurring background task.
type ScheduledTask struct {
	// ID is the unique identifier for the task.
	ID string

	// Name is a human-readable name for the task.
	Name string

	// LastRun is when the task last ran.
	LastRun time.Time

	// NextRun is when the task should run next.
	NextRun time.Time

	// LastError contains the last error message, if any.
	LastError string

	// LastSuccess is when the task last completed successfully.
	LastSuccess time.Time

	// Enabled indicates whether the task is active.
	Enabled bool
}

// TaskResult represents the outcome of a task execution.
type TaskResult struct {
	// TaskID identifies which task was run.
	TaskID string

	// StartedAt is when the task started.
	StartedAt time.Time

	// EndedAt is when the task completed.
	EndedAt time.Time

	// Success indicates whether the task completed without error.
	Success bool

	// Error contains the error message if Success is false.
	Error string

	// TicketsProcessed is the number of tickets handled by the run.
	TicketsProcessed int
}

// SchedulerConfig holds scheduler configuration. The sync task runs more
// often during the business-hours window than off-hours, matching when
// tickets are actually closed.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// BusinessStartHour is the first UTC hour of the business window.
	BusinessStartHour int

	// BusinessEndHour is the first UTC hour after the business window.
	BusinessEndHour int

	// BusinessInterval is the run interval inside the business window.
	BusinessInterval time.Duration

	// OffHoursInterval is the run interval outside the business window.
	OffHoursInterval time.Duration
}

// DefaultSchedulerConfig returns the production schedule: hourly between
// 07:00 and 19:00 UTC, every three hours otherwise.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           true,
		BusinessStartHour: 7,
		BusinessEndHour:   19,
		BusinessInterval:  time.Hour,
		OffHoursInterval:  3 * time.Hour,
	}
}

// IntervalAt returns the run interval that applies at time t.
func (c SchedulerConfig) IntervalAt(t time.Time) time.Duration {
	hour := t.UTC().Hour()
	if hour >= c.BusinessStartHour && hour < c.BusinessEndHour {
		return c.BusinessInterval
	}
	return c.OffHoursInterval
}

// TaskIDTicketSync is the id of the built-in recurring sync task.
const TaskIDTicketSync = "ticket-sync"
