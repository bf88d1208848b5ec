package driven

import (
	"context"
	"time"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
)

// SearchIndex is the remote search index holding ticket documents. It is
// the only durable state of the pipeline: the stored closedDate of a
// ticket's documents doubles as the change-detection watermark.
type SearchIndex interface {
	// LatestClosedDate returns the closedDate stored for a ticket, used
	// as the watermark for change detection. The second return is false
	// when the ticket has no indexed documents.
	LatestClosedDate(ctx context.Context, ticketNumber string) (time.Time, bool, error)

	// MergeOrUpload upserts documents keyed by id, splitting the set
	// into bounded batches internally. Re-uploading the same documents
	// is safe: ids are deterministic and upserts overwrite.
	MergeOrUpload(ctx context.Context, docs []domain.Document) error

	// DeleteByTicket removes every document whose ticketNumber matches,
	// returning how many were deleted. A ticket with no documents is a
	// no-op, not an error.
	DeleteByTicket(ctx context.Context, ticketNumber string) (int, error)
}
