package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/chunker"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/ports/driven"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/ports/driving"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/logger"
)

// Ensure ImportService implements the interface.
var _ driving.Importer = (*ImportService)(nil)

// EmbedBatchSize is how many rows share one embedding call.
const EmbedBatchSize = 50

// csvDateLayout is the timestamp format exported ticket CSVs carry.
const csvDateLayout = "2006-01-02 15:04:05"

// ImportService bulk-loads pre-summarised tickets from a CSV export.
// Rows already carry problem and resolution summaries, so the import
// only embeds and uploads; no ticketing API or summarisation calls.
type ImportService struct {
	embedder driven.EmbeddingService
	index    driven.SearchIndex
}

// NewImportService creates a CSV importer.
func NewImportService(embedder driven.EmbeddingService, index driven.SearchIndex) *ImportService {
	return &ImportService{embedder: embedder, index: index}
}

// csvRow is one parsed ticket row.
type csvRow struct {
	TicketNumber      string
	Contact           string
	ClosedDate        string
	ProblemSummary    string
	ResolutionSummary string
}

// ImportCSV reads the file, embeds rows in batches and uploads the
// resulting documents.
func (s *ImportService) ImportCSV(ctx context.Context, path string) (*domain.ImportSummary, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	logger.Info("import: found %d tickets to process", len(rows))

	var docs []domain.Document
	for start := 0; start < len(rows); start += EmbedBatchSize {
		end := start + EmbedBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]
		logger.Info("import: processing batch %d (tickets %d-%d)", start/EmbedBatchSize+1, start+1, end)

		texts := make([]string, len(batch))
		for i, row := range batch {
			texts[i] = fmt.Sprintf(combinedTemplate, row.ProblemSummary, row.ResolutionSummary)
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed batch starting at row %d: %w", start+1, err)
		}

		for i, row := range batch {
			for _, c := range chunker.Split(texts[i], chunker.MaxChunkLength) {
				docs = append(docs, domain.Document{
					ID:                fmt.Sprintf("%s-%d", row.TicketNumber, c.Index),
					TicketNumber:      row.TicketNumber,
					Contact:           row.Contact,
					ClosedDate:        row.ClosedDate,
					ProblemSummary:    row.ProblemSummary,
					ResolutionSummary: row.ResolutionSummary,
					ChunkID:           c.Index,
					Content:           c.Content,
					ContentVector:     vectors[i],
				})
			}
		}
	}

	logger.Info("import: uploading %d documents", len(docs))
	if err := s.index.MergeOrUpload(ctx, docs); err != nil {
		return nil, err
	}

	return &domain.ImportSummary{Rows: len(rows), Uploaded: len(docs)}, nil
}

// readRows parses the CSV by header name, so column order is free.
func readRows(path string) ([]csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"TicketNumber", "Contact", "CreatedDate", "ProblemSummary", "ResolutionSummary"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%w: csv missing column %q", domain.ErrInvalidInput, required)
		}
	}

	var rows []csvRow
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		rows = append(rows, csvRow{
			TicketNumber:      record[col["TicketNumber"]],
			Contact:           record[col["Contact"]],
			ClosedDate:        normaliseCSVDate(record[col["CreatedDate"]]),
			ProblemSummary:    record[col["ProblemSummary"]],
			ResolutionSummary: record[col["ResolutionSummary"]],
		})
	}
	return rows, nil
}

// normaliseCSVDate converts the export timestamp to RFC3339 UTC. Values
// in an unexpected format pass through with a UTC marker appended.
func normaliseCSVDate(s string) string {
	if t, err := time.Parse(csvDateLayout, s); err == nil {
		return t.Format("2006-01-02T15:04:05Z")
	}
	if strings.Contains(s, "Z") {
		return s
	}
	return s + "Z"
}
