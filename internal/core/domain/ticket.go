package domain

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Ticket is a service ticket fetched from the ticketing system.
// Tickets are read-only within a run; they are fetched fresh each time.
type Ticket struct {
	// ID is the ticketing system's numeric identifier.
	ID int

	// Summary is the one-line ticket subject.
	Summary string

	// Contact is the name of the reporting contact ("Unknown" when absent).
	Contact string

	// ClosedDate is when the ticket was closed.
	ClosedDate time.Time

	// Status is the status label ("Unknown" when absent).
	Status string

	// LastUpdated is the ticketing system's last-modified timestamp.
	// Falls back to ClosedDate when the system does not report one.
	LastUpdated time.Time
}

// Number returns the ticket id as the string used in index documents.
func (t Ticket) Number() string {
	return strconv.Itoa(t.ID)
}

// IsClosed reports whether the status label marks the ticket as resolved.
// Anything else means the ticket is open or was reopened, and its indexed
// documents must be removed.
func (t Ticket) IsClosed() bool {
	status := strings.ToLower(t.Status)
	return strings.Contains(status, "closed") || strings.Contains(status, "completed")
}

// Note is a free-text entry attached to a ticket.
type Note struct {
	// Text is the note body.
	Text string

	// DateEntered is when the note was added.
	DateEntered time.Time
}

// UsableNotes filters out empty and whitespace-only notes and sorts the
// remainder chronologically. The oldest usable note describes the problem
// even if an empty note preceded it in time.
func UsableNotes(notes []Note) []Note {
	usable := make([]Note, 0, len(notes))
	for _, n := range notes {
		if strings.TrimSpace(n.Text) != "" {
			usable = append(usable, n)
		}
	}
	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].DateEntered.Before(usable[j].DateEntered)
	})
	return usable
}
