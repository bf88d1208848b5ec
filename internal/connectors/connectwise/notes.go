package connectwise

import (
	"context"
	"fmt"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
)

// apiNote is the wire shape of a ticket note.
type apiNote struct {
	Text string `json:"text"`
	Info struct {
		DateEntered string `json:"dateEntered"`
	} `json:"_info"`
}

// FetchNotes retrieves all notes for a ticket. Ordering is not
// guaranteed by the API; callers sort by entry date.
func (c *Client) FetchNotes(ctx context.Context, ticketID int) ([]domain.Note, error) {
	u := fmt.Sprintf("%s/service/tickets/%d/allnotes", c.baseURL, ticketID)

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch notes for ticket %d: %w", ticketID, err)
	}

	var raw []apiNote
	if err := decode(body, &raw); err != nil {
		return nil, fmt.Errorf("fetch notes for ticket %d: %w", ticketID, err)
	}

	notes := make([]domain.Note, 0, len(raw))
	for _, n := range raw {
		notes = append(notes, domain.Note{
			Text:        n.Text,
			DateEntered: parseAPITime(n.Info.DateEntered),
		})
	}
	return notes, nil
}
