// Package openai provides an embedding service adapter using the Azure
// OpenAI embeddings API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/ports/driven"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/retry"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values. Batch calls carry far more payload than
// single calls, so they get a longer timeout and a flatter, shorter
// retry schedule.
const (
	DefaultTimeout      = 60 * time.Second
	DefaultBatchTimeout = 120 * time.Second

	DefaultMaxAttempts      = 5
	DefaultBatchMaxAttempts = 3

	DefaultBackoffBase = 5 * time.Second
)

// Config holds configuration for the embedding service.
type Config struct {
	// Endpoint is the full embeddings URL including deployment and
	// api-version query parameter (required).
	Endpoint string

	// APIKey is sent in the api-key header (required).
	APIKey string

	// Timeout is the single-text request timeout (default: 60s).
	Timeout time.Duration

	// BatchTimeout is the batch request timeout (default: 120s).
	BatchTimeout time.Duration
}

// EmbeddingService generates embedding vectors with bounded retries on
// transient failures.
type EmbeddingService struct {
	client      *http.Client
	batchClient *http.Client
	endpoint    string
	apiKey      string
	policy      retry.Policy
	batchPolicy retry.Policy
}

// embeddingRequest is the embeddings API request format.
type embeddingRequest struct {
	Input []string `json:"input"`
}

// embeddingResponse is the embeddings API response format.
type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// apiError carries the HTTP status for retry classification.
type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("openai: embedding API error %d: %s", e.StatusCode, e.Body)
}

func retryable(err error) bool {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.StatusCode == http.StatusTooManyRequests
	}
	return retry.IsTransient(err)
}

// NewEmbeddingService creates a new embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("openai: endpoint is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = DefaultBatchTimeout
	}

	return &EmbeddingService{
		client:      &http.Client{Timeout: cfg.Timeout},
		batchClient: &http.Client{Timeout: cfg.BatchTimeout},
		endpoint:    cfg.Endpoint,
		apiKey:      cfg.APIKey,
		policy: retry.Policy{
			Name:        "openai-embed",
			MaxAttempts: DefaultMaxAttempts,
			Backoff:     retry.Exponential(DefaultBackoffBase),
			Retryable:   retryable,
		},
		batchPolicy: retry.Policy{
			Name:        "openai-embed-batch",
			MaxAttempts: DefaultBatchMaxAttempts,
			Backoff:     retry.Fixed(DefaultBackoffBase),
			Retryable:   retryable,
		},
	}, nil
}

// Embed generates a vector embedding for a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.embed(ctx, s.client, s.policy, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 || embeddings[0] == nil {
		return nil, fmt.Errorf("%w: no embedding returned", domain.ErrMalformedResponse)
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	embeddings, err := s.embed(ctx, s.batchClient, s.batchPolicy, texts)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", domain.ErrMalformedResponse, len(texts), len(embeddings))
	}
	return embeddings, nil
}

func (s *EmbeddingService) embed(ctx context.Context, client *http.Client, policy retry.Policy, texts []string) ([][]float32, error) {
	jsonBody, err := json.Marshal(embeddingRequest{Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var embeddings [][]float32
	err = policy.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonBody))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("api-key", s.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return &apiError{StatusCode: resp.StatusCode, Body: string(body)}
		}

		var embedResp embeddingResponse
		if err := json.Unmarshal(body, &embedResp); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if len(embedResp.Data) == 0 {
			return fmt.Errorf("%w: response missing data", domain.ErrMalformedResponse)
		}

		// The API may return entries out of order; place by index.
		embeddings = make([][]float32, len(texts))
		for _, d := range embedResp.Data {
			if d.Index < 0 || d.Index >= len(texts) {
				return fmt.Errorf("%w: embedding index %d out of range", domain.ErrMalformedResponse, d.Index)
			}
			embeddings[d.Index] = d.Embedding
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return embeddings, nil
}
