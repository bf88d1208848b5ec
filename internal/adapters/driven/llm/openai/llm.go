// Package openai provides a ticket summarisation adapter using the
// Azure OpenAI chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/ports/driven"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/retry"
)

// Ensure Summariser implements the interface.
var _ driven.Summariser = (*Summariser)(nil)

// Default configuration values.
const (
	DefaultTimeout     = 60 * time.Second
	DefaultMaxAttempts = 5
	DefaultBackoffBase = 5 * time.Second
)

// problemPrompt instructs the model to restate the issue without
// inventing solutions.
const problemPrompt = "You are an IT support summarizer. Based ONLY on the provided ticket summary and first note, " +
	"rephrase them into a clear, professional description of the problem. Focus on what the user's issue is. " +
	"DO NOT suggest any solutions, actions, or troubleshooting."

// resolutionPrompt instructs the model to report only the actions the
// notes describe.
const resolutionPrompt = "You are an IT support summarizer. Based ONLY on the later notes, " +
	"summarize any actions taken or resolutions provided. Keep it factual, neutral, and professional. " +
	"DO NOT suggest additional troubleshooting or make assumptions beyond what is stated."

// Config holds configuration for the summarisation service.
type Config struct {
	// Endpoint is the full chat completions URL including deployment
	// and api-version query parameter (required).
	Endpoint string

	// APIKey is sent in the api-key header (required).
	APIKey string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration
}

// Summariser produces problem and resolution summaries via chat
// completions, with bounded retries on transient failures.
type Summariser struct {
	client   *http.Client
	endpoint string
	apiKey   string
	policy   retry.Policy
}

// chatRequest is the chat completions request format.
type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

// chatMessage is the chat message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the chat completions response format.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// apiError carries the HTTP status for retry classification.
type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("openai: API error %d: %s", e.StatusCode, e.Body)
}

func isRateLimited(err error) bool {
	var ae *apiError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusTooManyRequests
}

// NewSummariser creates a new chat completion summariser.
func NewSummariser(cfg Config) (*Summariser, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("openai: endpoint is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Summariser{
		client:   &http.Client{Timeout: cfg.Timeout},
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		policy: retry.Policy{
			Name:        "openai-chat",
			MaxAttempts: DefaultMaxAttempts,
			Backoff:     retry.Exponential(DefaultBackoffBase),
			Retryable: func(err error) bool {
				return retry.IsTransient(err) || isRateLimited(err)
			},
		},
	}, nil
}

// SummariseProblem rephrases the ticket summary and first note into a
// description of the reported problem.
func (s *Summariser) SummariseProblem(ctx context.Context, ticketSummary, firstNote string) (string, error) {
	userText := ticketSummary + "\n" + firstNote
	result, err := s.complete(ctx, problemPrompt, userText)
	if err != nil {
		return "", fmt.Errorf("summarise problem: %w", err)
	}
	return result, nil
}

// SummariseResolution summarises the actions recorded in the remaining
// notes.
func (s *Summariser) SummariseResolution(ctx context.Context, notes string) (string, error) {
	result, err := s.complete(ctx, resolutionPrompt, notes)
	if err != nil {
		return "", fmt.Errorf("summarise resolution: %w", err)
	}
	return result, nil
}

// complete performs one retried chat completion call.
func (s *Summariser) complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	reqBody := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userText},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var content string
	err = s.policy.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonBody))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("api-key", s.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
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

		var chatResp chatResponse
		if err := json.Unmarshal(body, &chatResp); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if len(chatResp.Choices) == 0 {
			return fmt.Errorf("%w: response missing choices", domain.ErrMalformedResponse)
		}

		content = strings.TrimSpace(chatResp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}
