package driven

import (
	"context"
	"time"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
)

// TicketSource fetches closed tickets and their notes from the ticketing
// system.
type TicketSource interface {
	// FetchPage returns one page of tickets closed on a board within the
	// inclusive [since, until] date window. Pages are 1-indexed; a page
	// shorter than PageSize (or empty) signals end-of-results for the
	// board.
	FetchPage(ctx context.Context, board string, since, until time.Time, page int) ([]domain.Ticket, error)

	// FetchNotes returns a ticket's notes in the order the API reports
	// them. Callers filter and sort via domain.UsableNotes.
	FetchNotes(ctx context.Context, ticketID int) ([]domain.Note, error)

	// PageSize returns the page size used by FetchPage.
	PageSize() int
}
