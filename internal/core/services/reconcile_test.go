package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
)

func notesAt(texts ...string) []domain.Note {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	notes := make([]domain.Note, len(texts))
	for i, txt := range texts {
		notes[i] = domain.Note{Text: txt, DateEntered: base.Add(time.Duration(i) * time.Hour)}
	}
	return notes
}

func TestDocumentsSingleChunk(t *testing.T) {
	sum := &mockSummariser{}
	emb := &mockEmbedder{}
	r := NewReconciler(sum, emb)

	tk := closedTicket(5001, "Printer offline")
	docs, err := r.Documents(context.Background(), tk, notesAt("It stopped printing", "Replaced toner", "Confirmed fixed"))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "5001-0", doc.ID)
	assert.Equal(t, "5001", doc.TicketNumber)
	assert.Equal(t, "Jane Smith", doc.Contact)
	assert.Equal(t, "2025-03-05T12:00:00Z", doc.ClosedDate)
	assert.Equal(t, "problem(Printer offline)", doc.ProblemSummary)
	assert.Equal(t, "resolution(Replaced toner\nConfirmed fixed)", doc.ResolutionSummary)
	assert.Equal(t, 0, doc.ChunkID)
	assert.Equal(t, []float32{0.1, 0.2}, doc.ContentVector)

	wantContent := "Problem: problem(Printer offline)\n\nResolution: resolution(Replaced toner\nConfirmed fixed)"
	assert.Equal(t, wantContent, doc.Content)

	// The first note feeds the problem summary, the rest the resolution.
	require.Len(t, sum.problemIn, 1)
	assert.Equal(t, "Printer offline\nIt stopped printing", sum.problemIn[0])

	// One embedding for the whole combined text.
	require.Len(t, emb.inputs, 1)
	assert.Equal(t, wantContent, emb.inputs[0])
}

func TestDocumentsSingleNoteUsesPlaceholder(t *testing.T) {
	sum := &mockSummariser{}
	r := NewReconciler(sum, &mockEmbedder{})

	docs, err := r.Documents(context.Background(), closedTicket(5001, "x"), notesAt("only note"))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, NoResolutionPlaceholder, docs[0].ResolutionSummary)
	assert.Empty(t, sum.resolutionIn)
}

func TestDocumentsNoUsableNotes(t *testing.T) {
	r := NewReconciler(&mockSummariser{}, &mockEmbedder{})

	docs, err := r.Documents(context.Background(), closedTicket(5001, "x"), notesAt("   ", "\t\n"))
	require.NoError(t, err)
	assert.Nil(t, docs)

	docs, err = r.Documents(context.Background(), closedTicket(5001, "x"), nil)
	require.NoError(t, err)
	assert.Nil(t, docs)
}

func TestDocumentsChunksLongNarrative(t *testing.T) {
	// A resolution long enough to push the combined text past one chunk.
	sum := &mockSummariser{}
	emb := &mockEmbedder{}
	r := NewReconciler(sum, emb)

	long := strings.Repeat("x", 4500)
	docs, err := r.Documents(context.Background(), closedTicket(7, "s"), notesAt("first", long))
	require.NoError(t, err)
	require.True(t, len(docs) > 1)

	var rebuilt strings.Builder
	for i, doc := range docs {
		assert.Equal(t, i, doc.ChunkID)
		assert.Equal(t, fmt.Sprintf("7-%d", i), doc.ID)
		// Every chunk shares the ticket-level fields and the one vector.
		assert.Equal(t, docs[0].ProblemSummary, doc.ProblemSummary)
		assert.Equal(t, []float32{0.1, 0.2}, doc.ContentVector)
		rebuilt.WriteString(doc.Content)
	}
	assert.Equal(t, emb.inputs[0], rebuilt.String())
	require.Len(t, emb.inputs, 1)
}

func TestDocumentsSummariserFailure(t *testing.T) {
	r := NewReconciler(&mockSummariser{problemErr: errBoom}, &mockEmbedder{})
	_, err := r.Documents(context.Background(), closedTicket(5001, "x"), notesAt("a", "b"))
	assert.ErrorIs(t, err, errBoom)
}

func TestDocumentsEmbedFailure(t *testing.T) {
	r := NewReconciler(&mockSummariser{}, &mockEmbedder{embedErr: errBoom})
	_, err := r.Documents(context.Background(), closedTicket(5001, "x"), notesAt("a", "b"))
	assert.ErrorIs(t, err, errBoom)
}
