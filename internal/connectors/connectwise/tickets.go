package connectwise

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/logger"
)

// apiTicket is the wire shape of a service ticket. Only the fields the
// pipeline consumes are decoded.
type apiTicket struct {
	ID      int    `json:"id"`
	Summary string `json:"summary"`
	Contact struct {
		Name string `json:"name"`
	} `json:"contact"`
	ClosedDate string `json:"closedDate"`
	Status     struct {
		Name string `json:"name"`
	} `json:"status"`
	Info struct {
		LastUpdated string `json:"lastUpdated"`
	} `json:"_info"`
}

// FetchPage retrieves one page of tickets closed on the board within the
// [since, until] date window. Pages are 1-indexed; a short or empty page
// signals the end of the result set.
func (c *Client) FetchPage(ctx context.Context, board string, since, until time.Time, page int) ([]domain.Ticket, error) {
	conditions := ClosedDateConditions(board, since, until)
	u := fmt.Sprintf("%s/service/tickets?conditions=%s&pageSize=%d&page=%d",
		c.baseURL, url.QueryEscape(conditions), c.pageSize, page)

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch tickets page %d for board %q: %w", page, board, err)
	}

	var raw []apiTicket
	if err := decode(body, &raw); err != nil {
		return nil, fmt.Errorf("fetch tickets page %d for board %q: %w", page, board, err)
	}

	tickets := make([]domain.Ticket, 0, len(raw))
	for _, t := range raw {
		tickets = append(tickets, t.toDomain())
	}
	return tickets, nil
}

func (t apiTicket) toDomain() domain.Ticket {
	contact := t.Contact.Name
	if contact == "" {
		contact = "Unknown"
	}
	status := t.Status.Name
	if status == "" {
		status = "Unknown"
	}
	// Tickets without a recorded update fall back to the close date.
	lastUpdated := t.Info.LastUpdated
	if lastUpdated == "" {
		lastUpdated = t.ClosedDate
	}
	return domain.Ticket{
		ID:          t.ID,
		Summary:     t.Summary,
		Contact:     contact,
		ClosedDate:  parseAPITime(t.ClosedDate),
		Status:      status,
		LastUpdated: parseAPITime(lastUpdated),
	}
}

// parseAPITime parses the timestamps ConnectWise returns. Unparseable or
// absent values collapse to the zero time, which the change detector
// treats as "always stale".
func parseAPITime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z07:00", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	logger.Warn("connectwise: unparseable timestamp %q", s)
	return time.Time{}
}
