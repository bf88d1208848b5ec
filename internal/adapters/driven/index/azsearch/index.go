// Package azsearch provides a search index adapter using the Azure AI
// Search REST API: watermark lookups, batched mergeOrUpload and
// per-ticket document deletion.
package azsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/ports/driven"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.SearchIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultAPIVersion = "2023-11-01"
	DefaultBatchSize  = 1000
	DefaultTimeout    = 120 * time.Second
)

// Config holds configuration for the search index.
type Config struct {
	// Endpoint is the service URL, e.g. https://myservice.search.windows.net (required).
	Endpoint string

	// IndexName is the target index (required).
	IndexName string

	// AdminKey is sent in the api-key header (required).
	AdminKey string

	// APIVersion overrides DefaultAPIVersion when set.
	APIVersion string

	// BatchSize caps documents per upload request (default: 1000).
	BatchSize int

	// Timeout is the per-request timeout (default: 120s).
	Timeout time.Duration
}

// Index talks to one Azure AI Search index.
type Index struct {
	client     *http.Client
	endpoint   string
	indexName  string
	adminKey   string
	apiVersion string
	batchSize  int
}

// searchRequest is the docs/search request format.
type searchRequest struct {
	Search string `json:"search"`
	Filter string `json:"filter,omitempty"`
	Select string `json:"select,omitempty"`
	Top    int    `json:"top,omitempty"`
}

// searchResponse is the docs/search response format. Only the fields
// this adapter selects are decoded.
type searchResponse struct {
	Value []struct {
		ID         string `json:"id"`
		ClosedDate string `json:"closedDate"`
	} `json:"value"`
}

// indexAction is one entry of a docs/index batch. The document fields
// are flattened alongside the action discriminator.
type indexAction struct {
	Action string `json:"@search.action"`
	domain.Document
}

// deleteAction is a docs/index delete entry keyed by document id.
type deleteAction struct {
	Action string `json:"@search.action"`
	ID     string `json:"id"`
}

// NewIndex creates a search index adapter.
func NewIndex(cfg Config) (*Index, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("azsearch: endpoint is required")
	}
	if cfg.IndexName == "" {
		return nil, fmt.Errorf("azsearch: index name is required")
	}
	if cfg.AdminKey == "" {
		return nil, fmt.Errorf("azsearch: admin key is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Index{
		client:     &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		indexName:  cfg.IndexName,
		adminKey:   cfg.AdminKey,
		apiVersion: cfg.APIVersion,
		batchSize:  cfg.BatchSize,
	}, nil
}

// LatestClosedDate returns the closed date recorded for a ticket's
// documents, or found=false when the ticket is not indexed.
func (x *Index) LatestClosedDate(ctx context.Context, ticketNumber string) (time.Time, bool, error) {
	req := searchRequest{
		Search: "*",
		Filter: fmt.Sprintf("ticketNumber eq '%s'", ticketNumber),
		Select: "closedDate",
		Top:    1,
	}

	var resp searchResponse
	if err := x.post(ctx, x.docsURL("search"), req, &resp); err != nil {
		return time.Time{}, false, fmt.Errorf("look up ticket %s: %w", ticketNumber, err)
	}
	if len(resp.Value) == 0 || resp.Value[0].ClosedDate == "" {
		return time.Time{}, false, nil
	}

	closed, err := time.Parse(time.RFC3339, resp.Value[0].ClosedDate)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("look up ticket %s: parse closedDate %q: %w", ticketNumber, resp.Value[0].ClosedDate, err)
	}
	return closed.UTC(), true, nil
}

// MergeOrUpload writes documents to the index in batches.
func (x *Index) MergeOrUpload(ctx context.Context, docs []domain.Document) error {
	for start := 0; start < len(docs); start += x.batchSize {
		end := start + x.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		actions := make([]indexAction, len(batch))
		for i, doc := range batch {
			actions[i] = indexAction{Action: "mergeOrUpload", Document: doc}
		}

		body := struct {
			Value []indexAction `json:"value"`
		}{Value: actions}

		if err := x.post(ctx, x.docsURL("index"), body, nil); err != nil {
			return fmt.Errorf("upload batch of %d documents: %w", len(batch), err)
		}
		logger.Info("azsearch: uploaded batch %d (%d documents)", start/x.batchSize+1, len(batch))
	}
	return nil
}

// DeleteByTicket removes every document belonging to a ticket and
// returns the number deleted. Unindexed tickets are a no-op. Tickets
// with more documents than one lookup returns are drained by repeating
// the lookup: each pass deletes what it found, so the next pass sees
// only the remainder.
func (x *Index) DeleteByTicket(ctx context.Context, ticketNumber string) (int, error) {
	req := searchRequest{
		Search: "*",
		Filter: fmt.Sprintf("ticketNumber eq '%s'", ticketNumber),
		Select: "id",
		Top:    x.batchSize,
	}

	deleted := 0
	for {
		var resp searchResponse
		if err := x.post(ctx, x.docsURL("search"), req, &resp); err != nil {
			return deleted, fmt.Errorf("find documents for ticket %s: %w", ticketNumber, err)
		}
		if len(resp.Value) == 0 {
			return deleted, nil
		}

		actions := make([]deleteAction, len(resp.Value))
		for i, v := range resp.Value {
			actions[i] = deleteAction{Action: "delete", ID: v.ID}
		}

		body := struct {
			Value []deleteAction `json:"value"`
		}{Value: actions}

		if err := x.post(ctx, x.docsURL("index"), body, nil); err != nil {
			return deleted, fmt.Errorf("delete documents for ticket %s: %w", ticketNumber, err)
		}
		deleted += len(actions)

		if len(resp.Value) < x.batchSize {
			return deleted, nil
		}
	}
}

// docsURL builds a docs operation URL for this index.
func (x *Index) docsURL(op string) string {
	return fmt.Sprintf("%s/indexes/%s/docs/%s?api-version=%s",
		x.endpoint, url.PathEscape(x.indexName), op, x.apiVersion)
}

// post performs one JSON request. Azure returns 200 for search and
// 200/201 for index batches.
func (x *Index) post(ctx context.Context, u string, reqBody, respBody any) error {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("api-key", x.adminKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := x.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("azsearch: API error %d: %s", resp.StatusCode, string(data))
	}

	if respBody != nil {
		if err := json.Unmarshal(data, respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
