package services

import (
	"context"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/ports/driven"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/logger"
)

// ChangeDetector classifies tickets against the index. The index itself
// is the watermark store: the closedDate recorded on a ticket's
// documents marks the state it was last processed in.
type ChangeDetector struct {
	index driven.SearchIndex
}

// NewChangeDetector creates a change detector backed by the index.
func NewChangeDetector(index driven.SearchIndex) *ChangeDetector {
	return &ChangeDetector{index: index}
}

// Classify decides the per-ticket action. Status is checked before the
// watermark: a reopened ticket must have its documents removed even
// when its timestamps suggest nothing changed. A failed watermark
// lookup degrades to processing, never to silently skipping.
func (d *ChangeDetector) Classify(ctx context.Context, t domain.Ticket) domain.ChangeAction {
	if !t.IsClosed() {
		return domain.ChangeDelete
	}

	watermark, found, err := d.index.LatestClosedDate(ctx, t.Number())
	if err != nil {
		logger.Warn("could not check existing ticket #%s: %v", t.Number(), err)
		return domain.ChangeProcess
	}
	if found && !t.LastUpdated.After(watermark) {
		return domain.ChangeSkip
	}
	return domain.ChangeProcess
}
