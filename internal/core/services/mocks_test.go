package services

import (
	"context"
	"fmt"
	"time"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
)

// mockTicketSource serves canned pages per board.
type mockTicketSource struct {
	pages      map[string][][]domain.Ticket
	notes      map[int][]domain.Note
	pageErr    error
	notesErr   error
	notesDelay time.Duration
	pageSize   int
}

func (m *mockTicketSource) FetchPage(_ context.Context, board string, _, _ time.Time, page int) ([]domain.Ticket, error) {
	if m.pageErr != nil {
		return nil, m.pageErr
	}
	boardPages := m.pages[board]
	if page > len(boardPages) {
		return nil, nil
	}
	return boardPages[page-1], nil
}

func (m *mockTicketSource) FetchNotes(_ context.Context, ticketID int) ([]domain.Note, error) {
	if m.notesErr != nil {
		return nil, m.notesErr
	}
	if m.notesDelay > 0 {
		time.Sleep(m.notesDelay)
	}
	return m.notes[ticketID], nil
}

func (m *mockTicketSource) PageSize() int {
	if m.pageSize == 0 {
		return 250
	}
	return m.pageSize
}

// mockIndex records uploads and deletions and serves watermarks.
type mockIndex struct {
	watermarks   map[string]time.Time
	lookupErr    error
	uploadErr    error
	uploads      [][]domain.Document
	deleted      []string
	deleteCounts map[string]int
}

func (m *mockIndex) LatestClosedDate(_ context.Context, ticketNumber string) (time.Time, bool, error) {
	if m.lookupErr != nil {
		return time.Time{}, false, m.lookupErr
	}
	w, ok := m.watermarks[ticketNumber]
	return w, ok, nil
}

func (m *mockIndex) MergeOrUpload(_ context.Context, docs []domain.Document) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	batch := make([]domain.Document, len(docs))
	copy(batch, docs)
	m.uploads = append(m.uploads, batch)
	return nil
}

func (m *mockIndex) DeleteByTicket(_ context.Context, ticketNumber string) (int, error) {
	m.deleted = append(m.deleted, ticketNumber)
	return m.deleteCounts[ticketNumber], nil
}

func (m *mockIndex) uploadedDocs() []domain.Document {
	var all []domain.Document
	for _, batch := range m.uploads {
		all = append(all, batch...)
	}
	return all
}

// mockSummariser echoes its inputs with a marker prefix.
type mockSummariser struct {
	problemErr    error
	resolutionErr error
	problemIn     []string
	resolutionIn  []string
}

func (m *mockSummariser) SummariseProblem(_ context.Context, ticketSummary, firstNote string) (string, error) {
	if m.problemErr != nil {
		return "", m.problemErr
	}
	in := ticketSummary + "\n" + firstNote
	m.problemIn = append(m.problemIn, in)
	return "problem(" + ticketSummary + ")", nil
}

func (m *mockSummariser) SummariseResolution(_ context.Context, notes string) (string, error) {
	if m.resolutionErr != nil {
		return "", m.resolutionErr
	}
	m.resolutionIn = append(m.resolutionIn, notes)
	return "resolution(" + notes + ")", nil
}

// mockEmbedder returns a fixed vector per text.
type mockEmbedder struct {
	embedErr error
	inputs   []string
	batches  [][]string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.inputs = append(m.inputs, text)
	return []float32{0.1, 0.2}, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.batches = append(m.batches, texts)
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{float32(i)}
	}
	return vecs, nil
}

// mockSchedulerStore is an in-memory scheduler store.
type mockSchedulerStore struct {
	tasks   map[string]*domain.ScheduledTask
	results []domain.TaskResult
	pruned  int
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{tasks: make(map[string]*domain.ScheduledTask)}
}

func (m *mockSchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	task, ok := m.tasks[taskID]
	if !ok {
		return nil, nil
	}
	cp := *task
	return &cp, nil
}

func (m *mockSchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	var tasks []domain.ScheduledTask
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (m *mockSchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidInput
	}
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *mockSchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}
	m.results = append(m.results, *result)
	return nil
}

func (m *mockSchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	var results []domain.TaskResult
	for i := len(m.results) - 1; i >= 0 && len(results) < limit; i-- {
		if m.results[i].TaskID == taskID {
			results = append(results, m.results[i])
		}
	}
	return results, nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, keep int) error {
	m.pruned++
	return nil
}

// closedTicket builds a closed ticket with sane timestamps.
func closedTicket(id int, summary string) domain.Ticket {
	closed := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	return domain.Ticket{
		ID:          id,
		Summary:     summary,
		Contact:     "Jane Smith",
		ClosedDate:  closed,
		Status:      "Closed",
		LastUpdated: closed.Add(time.Hour),
	}
}

var errBoom = fmt.Errorf("boom")
