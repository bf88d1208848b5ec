// Package chunker splits text into fixed-size addressable chunks.
// Splitting is deterministic and pure: the same text always produces the
// same chunks, so chunk indices are stable across runs and can be used in
// persistent document ids.
package chunker

import "unicode/utf8"

// MaxChunkLength is the maximum number of characters per chunk.
const MaxChunkLength = 2000

// Chunk is a contiguous slice of the input text.
type Chunk struct {
	// Index is the ordinal position of the chunk, starting at 0.
	Index int

	// Content is the chunk text, at most maxLen characters.
	Content string
}

// Split cuts text into contiguous, non-overlapping chunks of at most
// maxLen characters, in original order. Lengths are measured in runes,
// never bytes, so multi-byte text is not cut mid-character. Text no
// longer than maxLen yields exactly one chunk with index 0; empty text
// yields one empty chunk. A non-positive maxLen falls back to
// MaxChunkLength.
func Split(text string, maxLen int) []Chunk {
	if maxLen <= 0 {
		maxLen = MaxChunkLength
	}

	if utf8.RuneCountInString(text) <= maxLen {
		return []Chunk{{Index: 0, Content: text}}
	}

	runes := []rune(text)
	count := (len(runes) + maxLen - 1) / maxLen
	chunks := make([]Chunk, 0, count)
	for i := 0; i < count; i++ {
		start := i * maxLen
		end := start + maxLen
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{Index: i, Content: string(runes[start:end])})
	}
	return chunks
}
