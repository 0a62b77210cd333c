package ingest

import "unicode"

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// Chunker splits text into fixed-size pieces.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker. Overlap is reduced when it would stop the
// window from advancing.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	return &Chunker{size: size, overlap: overlap}
}

// Size returns the chunk size in characters.
func (c *Chunker) Size() int {
	return c.size
}

// Split cuts text into chunks of at most Size runes. A cut is moved back to
// the nearest whitespace in the second half of the window so words stay
// whole where possible.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= c.size {
		return []string{text}
	}

	chunks := make([]string, 0, len(runes)/(c.size-c.overlap)+1)
	for start := 0; start < len(runes); {
		end := start + c.size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		end = softCut(runes, start, end)
		chunks = append(chunks, string(runes[start:end]))

		next := end - c.overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

func softCut(runes []rune, start, end int) int {
	floor := start + (end-start)/2
	for i := end; i > floor; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}
