package domain

// NarrativePair is the summarised problem/resolution narrative derived
// from a ticket's notes. It exists only transiently during processing.
type NarrativePair struct {
	Problem    string
	Resolution string
}

// Document is the unit persisted to the search index: one chunk of a
// ticket's combined narrative plus the ticket-level metadata. All
// documents of the same ticket share everything except ChunkID and
// Content. The id "{ticketId}-{chunkIndex}" is deterministic, so
// re-running the pipeline merge-upserts the same documents.
type Document struct {
	ID                string    `json:"id"`
	TicketNumber      string    `json:"ticketNumber"`
	Contact           string    `json:"contact"`
	ClosedDate        string    `json:"closedDate"` // RFC3339 with explicit UTC marker
	ProblemSummary    string    `json:"problemSummary"`
	ResolutionSummary string    `json:"resolutionSummary"`
	ChunkID           int       `json:"chunkId"`
	Content           string    `json:"content"`
	ContentVector     []float32 `json:"contentVector"`
}
