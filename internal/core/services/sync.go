package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/ports/driven"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/ports/driving"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.SyncOrchestrator = (*SyncService)(nil)

// dateLayout formats the run's date-window boundaries for the summary.
const dateLayout = "2006-01-02"

// SyncService runs the ticket synchronisation pipeline: page through
// closed tickets per board, classify each against the index, rebuild the
// documents of changed tickets and remove those of reopened ones.
// At most one run is active at a time.
type SyncService struct {
	source     driven.TicketSource
	index      driven.SearchIndex
	detector   *ChangeDetector
	reconciler *Reconciler
	boards     []string

	// pacer spaces out processed tickets; each costs up to three
	// upstream model calls.
	pacer *rate.Limiter

	mu      sync.Mutex
	running bool
	status  driving.SyncStatus
}

// NewSyncService creates the orchestrator over its four collaborators.
func NewSyncService(
	source driven.TicketSource,
	index driven.SearchIndex,
	summariser driven.Summariser,
	embedder driven.EmbeddingService,
	boards []string,
) *SyncService {
	return &SyncService{
		source:     source,
		index:      index,
		detector:   NewChangeDetector(index),
		reconciler: NewReconciler(summariser, embedder),
		boards:     boards,
		pacer:      rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Run executes one synchronisation pass.
func (s *SyncService) Run(ctx context.Context, opts driving.RunOptions) (*domain.RunSummary, error) {
	mode := opts.Mode
	if mode == "" {
		mode = domain.ModeIncremental
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown sync mode %q", domain.ErrInvalidInput, mode)
	}

	if !s.begin(mode) {
		return nil, domain.ErrSyncInProgress
	}
	defer s.end()

	lookback := opts.LookbackDays
	if lookback <= 0 {
		lookback = mode.LookbackDays()
	}
	ticketCap := opts.TicketCap
	if mode == domain.ModeTest && ticketCap == 0 {
		ticketCap = 1
	}

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -lookback)
	until := now
	if !opts.BackfillUntil.IsZero() {
		since = opts.BackfillUntil.UTC()
		logger.Info("sync: using backfill date %s", since.Format(dateLayout))
	}

	summary := &domain.RunSummary{
		RunID:    uuid.NewString(),
		SyncMode: mode,
		DateRange: domain.DateRange{
			From: since.Format(dateLayout),
			To:   until.Format(dateLayout),
		},
	}

	logger.Info("sync %s: %s mode, gathering tickets from %s through %s",
		summary.RunID, mode, summary.DateRange.From, summary.DateRange.To)

	var buffer []domain.Document
	var pendingDeletes []string
	uploaded := 0
	capReached := false

	for _, board := range s.boards {
		logger.Info("sync: processing board %s", board)

		for page := 1; !capReached; page++ {
			tickets, err := s.source.FetchPage(ctx, board, since, until, page)
			if err != nil {
				return nil, err
			}
			if len(tickets) == 0 {
				break
			}

			for _, t := range tickets {
				if ticketCap > 0 && summary.Processed >= ticketCap {
					capReached = true
					break
				}

				action := s.detector.Classify(ctx, t)
				if action == domain.ChangeSkip {
					summary.Skipped++
					logger.Info("sync: skipping ticket #%s, no changes since last sync", t.Number())
					s.progress(summary, len(buffer))
					continue
				}

				summary.Processed++
				logger.Info("sync: processing ticket #%s (status: %s)", t.Number(), t.Status)

				if action == domain.ChangeDelete {
					logger.Info("sync: ticket #%s is not closed, marking for deletion", t.Number())
					pendingDeletes = append(pendingDeletes, t.Number())
					s.progress(summary, len(buffer))
					continue
				}

				notes, err := s.source.FetchNotes(ctx, t.ID)
				if err != nil {
					return nil, err
				}

				docs, err := s.reconciler.Documents(ctx, t, notes)
				if err != nil {
					return nil, err
				}
				if len(docs) == 0 {
					s.progress(summary, len(buffer))
					continue
				}

				buffer = append(buffer, docs...)

				// Small incremental flushes bound the work lost if the
				// run is killed externally.
				if opts.FlushThreshold > 0 && len(buffer) >= opts.FlushThreshold {
					logger.Info("sync: uploading batch of %d documents", len(buffer))
					if err := s.index.MergeOrUpload(ctx, buffer); err != nil {
						return nil, err
					}
					uploaded += len(buffer)
					buffer = buffer[:0]
				}

				s.progress(summary, len(buffer))

				if err := s.pacer.Wait(ctx); err != nil {
					return nil, err
				}
			}

			if len(tickets) < s.source.PageSize() {
				break
			}
		}

		if capReached {
			break
		}
	}

	for _, number := range pendingDeletes {
		n, err := s.index.DeleteByTicket(ctx, number)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			logger.Info("sync: deleted %d documents for ticket #%s", n, number)
		}
	}
	summary.Deleted = len(pendingDeletes)

	if len(buffer) > 0 {
		logger.Info("sync: uploading final batch of %d documents", len(buffer))
		if err := s.index.MergeOrUpload(ctx, buffer); err != nil {
			return nil, err
		}
		uploaded += len(buffer)
	}
	summary.Uploaded = uploaded

	logger.Info("sync %s completed: %d processed, %d skipped, %d uploaded, %d deleted",
		summary.RunID, summary.Processed, summary.Skipped, summary.Uploaded, summary.Deleted)
	return summary, nil
}

// Status returns a snapshot of the active run's progress.
func (s *SyncService) Status() driving.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetPacer replaces the inter-ticket rate limiter.
func (s *SyncService) SetPacer(l *rate.Limiter) {
	s.pacer = l
}

func (s *SyncService) begin(mode domain.SyncMode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	s.status = driving.SyncStatus{Running: true, Mode: mode}
	return true
}

func (s *SyncService) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.status.Running = false
}

func (s *SyncService) progress(summary *domain.RunSummary, buffered int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.TicketsProcessed = summary.Processed
	s.status.TicketsSkipped = summary.Skipped
	s.status.DocumentsBuffered = buffered
}
