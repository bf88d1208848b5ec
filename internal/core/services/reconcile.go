package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/chunker"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/ports/driven"
)

// combinedTemplate joins the two narrative halves into the indexed text.
const combinedTemplate = "Problem: %s\n\nResolution: %s"

// NoResolutionPlaceholder is recorded when a ticket has only one usable
// note, so no resolution narrative exists.
const NoResolutionPlaceholder = "No additional notes found."

// Reconciler turns a ticket and its notes into index documents:
// summarise the problem and resolution, embed the combined narrative
// once, and chunk the text into documents that share the vector.
type Reconciler struct {
	summariser driven.Summariser
	embedder   driven.EmbeddingService
}

// NewReconciler creates a reconciler.
func NewReconciler(summariser driven.Summariser, embedder driven.EmbeddingService) *Reconciler {
	return &Reconciler{summariser: summariser, embedder: embedder}
}

// Documents builds the index documents for one ticket. Tickets with no
// usable notes produce no documents and no error.
func (r *Reconciler) Documents(ctx context.Context, t domain.Ticket, notes []domain.Note) ([]domain.Document, error) {
	usable := domain.UsableNotes(notes)
	if len(usable) == 0 {
		return nil, nil
	}

	pair, err := r.narrative(ctx, t, usable)
	if err != nil {
		return nil, fmt.Errorf("ticket #%s: %w", t.Number(), err)
	}

	combined := fmt.Sprintf(combinedTemplate, pair.Problem, pair.Resolution)

	vector, err := r.embedder.Embed(ctx, combined)
	if err != nil {
		return nil, fmt.Errorf("ticket #%s: %w", t.Number(), err)
	}

	chunks := chunker.Split(combined, chunker.MaxChunkLength)
	docs := make([]domain.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = domain.Document{
			ID:                fmt.Sprintf("%d-%d", t.ID, c.Index),
			TicketNumber:      t.Number(),
			Contact:           t.Contact,
			ClosedDate:        t.ClosedDate.UTC().Format(time.RFC3339),
			ProblemSummary:    pair.Problem,
			ResolutionSummary: pair.Resolution,
			ChunkID:           c.Index,
			Content:           c.Content,
			ContentVector:     vector,
		}
	}
	return docs, nil
}

// narrative summarises the oldest note as the problem and the remaining
// notes as the resolution.
func (r *Reconciler) narrative(ctx context.Context, t domain.Ticket, usable []domain.Note) (domain.NarrativePair, error) {
	problem, err := r.summariser.SummariseProblem(ctx, t.Summary, usable[0].Text)
	if err != nil {
		return domain.NarrativePair{}, err
	}

	resolution := NoResolutionPlaceholder
	if len(usable) > 1 {
		texts := make([]string, 0, len(usable)-1)
		for _, n := range usable[1:] {
			texts = append(texts, n.Text)
		}
		resolution, err = r.summariser.SummariseResolution(ctx, strings.Join(texts, "\n"))
		if err != nil {
			return domain.NarrativePair{}, err
		}
	}

	return domain.NarrativePair{Problem: problem, Resolution: resolution}, nil
}
