// Package ingest turns plain text and markdown files into library records.
// Text longer than one chunk becomes a chunked document whose records carry
// the chunk metadata the grouping layer understands.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// MetaTitle carries the human-readable title of an ingested file.
const MetaTitle = "title"

// Option configures a conversion.
type Option func(*options)

type options struct {
	chunkSize  int
	overlap    int
	collection string
}

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(n int) Option {
	return func(o *options) { o.chunkSize = n }
}

// WithOverlap sets how many characters consecutive chunks share.
func WithOverlap(n int) Option {
	return func(o *options) { o.overlap = n }
}

// WithCollection files every produced record under collection.
func WithCollection(c string) Option {
	return func(o *options) { o.collection = c }
}

// Supported reports whether name has an extension FromFile converts.
func Supported(name string) bool {
	_, ok := formatOf(name)
	return ok
}

type format int

const (
	formatPlain format = iota
	formatMarkdown
)

func formatOf(name string) (format, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text":
		return formatPlain, true
	case ".md", ".markdown":
		return formatMarkdown, true
	}
	return 0, false
}

// FromFile converts the contents of the file called name into records.
// The file name becomes the group's base identifier, so records produced
// from the same file group together.
func FromFile(name string, data []byte, opts ...Option) ([]domain.Record, error) {
	f, ok := formatOf(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Ext(name))
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not UTF-8 text", domain.ErrInvalidInput, name)
	}

	raw := string(data)
	var text, title string
	switch f {
	case formatMarkdown:
		title = markdownTitle(raw)
		text = stripMarkdown(raw)
	default:
		text = normaliseText(raw)
	}
	if title == "" {
		title = titleFromName(name)
	}
	return FromText(filepath.Base(name), title, text, opts...)
}

// FromText converts text into one record, or into chunk records when it
// exceeds the chunk size.
func FromText(filename, title, text string, opts ...Option) ([]domain.Record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s has no text", domain.ErrInvalidInput, filename)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	parts := NewChunker(o.chunkSize, o.overlap).Split(text)

	base := func() map[string]any {
		m := map[string]any{MetaTitle: title}
		if filename != "" {
			m[domain.MetaFilename] = filename
		}
		if o.collection != "" {
			m[domain.MetaCollection] = o.collection
		}
		return m
	}

	if len(parts) == 1 {
		return []domain.Record{{ContentType: domain.ContentTypeDocument, Text: parts[0], Metadata: base()}}, nil
	}
	if filename == "" {
		return nil, fmt.Errorf("%w: chunked text needs a file name", domain.ErrInvalidInput)
	}

	records := make([]domain.Record, len(parts))
	for i, part := range parts {
		meta := base()
		meta[domain.MetaIsChunk] = true
		meta[domain.MetaTotalChunks] = len(parts)
		meta[domain.MetaChunkIndex] = i
		records[i] = domain.Record{ContentType: domain.ContentTypeDocument, Text: part, Metadata: meta}
	}
	return records, nil
}
