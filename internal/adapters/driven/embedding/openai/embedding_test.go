package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
)

func newTestService(t *testing.T, endpoint string) *EmbeddingService {
	t.Helper()
	s, err := NewEmbeddingService(Config{Endpoint: endpoint, APIKey: "test-key"})
	require.NoError(t, err)
	zero := func(attempt int) time.Duration { return 0 }
	s.policy.Backoff = zero
	s.batchPolicy.Backoff = zero
	return s
}

func TestEmbed(t *testing.T) {
	var gotReq embeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(`{"data": [{"embedding": [0.1, 0.2, 0.3], "index": 0}]}`))
	}))
	defer srv.Close()

	s := newTestService(t, srv.URL)
	vec, err := s.Embed(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, []string{"some text"}, gotReq.Input)
}

func TestEmbedBatchReordersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [
			{"embedding": [2.0], "index": 1},
			{"embedding": [1.0], "index": 0},
			{"embedding": [3.0], "index": 2}
		]}`))
	}))
	defer srv.Close()

	s := newTestService(t, srv.URL)
	vecs, err := s.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, []float32{1.0}, vecs[0])
	assert.Equal(t, []float32{2.0}, vecs[1])
	assert.Equal(t, []float32{3.0}, vecs[2])
}

func TestEmbedBatchEmpty(t *testing.T) {
	s := newTestService(t, "http://unused.invalid")
	vecs, err := s.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEmbedRetriesRateLimit(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"data": [{"embedding": [0.5], "index": 0}]}`))
	}))
	defer srv.Close()

	s := newTestService(t, srv.URL)
	vec, err := s.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5}, vec)
	assert.Equal(t, 3, calls)
}

func TestEmbedBatchRetryBudgetExhausted(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := newTestService(t, srv.URL)
	_, err := s.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Equal(t, DefaultBatchMaxAttempts, calls)
}

func TestEmbedMissingDataNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	s := newTestService(t, srv.URL)
	_, err := s.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	assert.Equal(t, 1, calls)
}
