package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	text := "Problem: printer offline\n\nResolution: rebooted the print spooler"
	chunks := Split(text, MaxChunkLength)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, text, chunks[0].Content)
}

func TestSplitExactBoundaryIsSingleChunk(t *testing.T) {
	text := strings.Repeat("a", MaxChunkLength)
	chunks := Split(text, MaxChunkLength)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Content)
}

func TestSplitLongText(t *testing.T) {
	text := strings.Repeat("x", 4500)
	chunks := Split(text, 2000)

	require.Len(t, chunks, 3)
	assert.Equal(t, 2000, len(chunks[0].Content))
	assert.Equal(t, 2000, len(chunks[1].Content))
	assert.Equal(t, 500, len(chunks[2].Content))

	var rebuilt strings.Builder
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		rebuilt.WriteString(c.Content)
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestSplitMeasuresRunesNotBytes(t *testing.T) {
	// 1500 characters but 4500 bytes; still a single chunk.
	text := strings.Repeat("日", 1500)
	chunks := Split(text, 2000)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Content)
}

func TestSplitNeverCutsMidRune(t *testing.T) {
	text := strings.Repeat("日", 2500)
	chunks := Split(text, 2000)

	require.Len(t, chunks, 2)
	assert.Equal(t, 2000, utf8.RuneCountInString(chunks[0].Content))
	assert.Equal(t, 500, utf8.RuneCountInString(chunks[1].Content))

	var rebuilt strings.Builder
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c.Content))
		rebuilt.WriteString(c.Content)
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestSplitEmptyText(t *testing.T) {
	chunks := Split("", MaxChunkLength)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Empty(t, chunks[0].Content)
}

func TestSplitFallsBackToDefaultLength(t *testing.T) {
	text := strings.Repeat("y", MaxChunkLength+1)
	chunks := Split(text, 0)

	require.Len(t, chunks, 2)
	assert.Equal(t, MaxChunkLength, len(chunks[0].Content))
	assert.Equal(t, 1, len(chunks[1].Content))
}
