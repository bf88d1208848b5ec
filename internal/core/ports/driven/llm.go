package driven

import "context"

// Summariser turns raw ticket notes into a problem/resolution narrative
// via an LLM chat endpoint. Both operations are rephrase-only: the fixed
// system instructions forbid the model from inventing solutions or
// troubleshooting steps.
type Summariser interface {
	// SummariseProblem rephrases the ticket summary and the oldest note
	// into a description of the user's problem.
	SummariseProblem(ctx context.Context, ticketSummary, firstNote string) (string, error)

	// SummariseResolution summarises the actions recorded in the
	// remaining notes. Callers skip this entirely when there are no
	// notes beyond the first.
	SummariseResolution(ctx context.Context, notes string) (string, error)
}
