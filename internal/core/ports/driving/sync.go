package driving

import (
	"context"
	"time"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
)

// RunOptions parameterises a single synchronisation run. The on-demand
// and scheduled entry points are thin callers supplying different
// options to the same orchestrator.
type RunOptions struct {
	// Mode selects the default lookback window and, for test mode, the
	// one-ticket processing cap.
	Mode domain.SyncMode

	// LookbackDays overrides the mode's default window when positive.
	LookbackDays int

	// BackfillUntil, when set, replaces the computed range start.
	BackfillUntil time.Time

	// FlushThreshold flushes the document buffer whenever it reaches
	// this size. Zero means a single flush at the end of the run. The
	// scheduled path uses a small threshold to bound the work lost if
	// the invocation is killed externally.
	FlushThreshold int

	// TicketCap stops the run after this many tickets have been
	// processed. Zero means no cap (test mode defaults to 1).
	TicketCap int
}

// SyncStatus reports the progress of an active run.
type SyncStatus struct {
	Running          bool
	Mode             domain.SyncMode
	TicketsProcessed int
	TicketsSkipped   int
	DocumentsBuffered int
}

// SyncOrchestrator drives a full synchronisation pass across boards,
// pages and tickets.
type SyncOrchestrator interface {
	// Run executes one synchronisation pass and returns its summary.
	// On failure, already-flushed batches remain committed; the run
	// reports the error instead of a summary.
	Run(ctx context.Context, opts RunOptions) (*domain.RunSummary, error)

	// Status returns the progress of the active run, if any.
	Status() SyncStatus
}

// Importer performs the one-time bulk CSV load: embeddings in batches,
// no change detection, no summarisation.
type Importer interface {
	ImportCSV(ctx context.Context, path string) (*domain.ImportSummary, error)
}
