package domain

import (
	"strconv"
	"strings"
	"time"
)

// ContentType identifies the kind of content a record holds.
type ContentType string

// Known content types.
const (
	// ContentTypeDocument is a text document or a chunk of one.
	ContentTypeDocument ContentType = "document"

	// ContentTypeImage is an image, possibly extracted from a source file.
	ContentTypeImage ContentType = "image"
)

// IsValid returns true if the content type is recognised.
func (c ContentType) IsValid() bool {
	return c == ContentTypeDocument || c == ContentTypeImage
}

// String returns the string representation.
func (c ContentType) String() string {
	return string(c)
}

// Metadata keys understood by the grouping layer.
// Everything else in Record.Metadata is opaque.
const (
	MetaIsChunk       = "isChunk"
	MetaIsChunked     = "isChunked"
	MetaTotalChunks   = "totalChunks"
	MetaChunkIndex    = "chunkIndex"
	MetaFilename      = "filename"
	MetaPDFFilename   = "pdfFilename"
	MetaPDFPageNumber = "pdfPageNumber"
	MetaDateAdded     = "dateAdded"
	MetaCollection    = "collection"
)

// Record is one flat content item as delivered by the backend.
// It is the atomic unit of the record cache.
type Record struct {
	// ID is the backend identifier, stable across refreshes.
	ID string `json:"id"`

	// URL is the origin identifier. Chunk records carry a "#chunk-N" suffix.
	// Uploaded files may have no URL at all.
	URL string `json:"url,omitempty"`

	// ContentType is document or image.
	ContentType ContentType `json:"contentType"`

	// Text is the record's text body (chunk text, OCR text, etc).
	Text string `json:"text,omitempty"`

	// Metadata holds typed and opaque fields decoded from JSON.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IsChunk reports whether the record declares itself part of a chunked document.
func (r *Record) IsChunk() bool {
	return r.metaBool(MetaIsChunk) || r.metaBool(MetaIsChunked)
}

// TotalChunks returns the declared number of chunks.
func (r *Record) TotalChunks() (int, bool) {
	return r.metaInt(MetaTotalChunks)
}

// ChunkIndex returns the record's position within its chunked document.
func (r *Record) ChunkIndex() (int, bool) {
	return r.metaInt(MetaChunkIndex)
}

// Filename returns metadata.filename.
func (r *Record) Filename() string {
	return r.metaString(MetaFilename)
}

// PDFFilename returns the source file an image was extracted from.
func (r *Record) PDFFilename() string {
	return r.metaString(MetaPDFFilename)
}

// PDFPageNumber returns the page an image was extracted from.
func (r *Record) PDFPageNumber() (int, bool) {
	return r.metaInt(MetaPDFPageNumber)
}

// Collection returns the collection the record was filed under.
func (r *Record) Collection() string {
	return r.metaString(MetaCollection)
}

// DateAdded returns when the backend ingested the record.
// The zero time is returned when the field is missing or unparseable.
func (r *Record) DateAdded() time.Time {
	v, ok := r.Metadata[MetaDateAdded]
	if !ok || v == nil {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
		if secs, err := strconv.ParseInt(t, 10, 64); err == nil {
			return unixAny(secs)
		}
	case float64:
		return unixAny(int64(t))
	case int64:
		return unixAny(t)
	case int:
		return unixAny(int64(t))
	}
	return time.Time{}
}

// BaseURL returns the URL with any fragment suffix ("#chunk-2") removed.
func (r *Record) BaseURL() string {
	if i := strings.IndexByte(r.URL, '#'); i >= 0 {
		return r.URL[:i]
	}
	return r.URL
}

// IsHTTPURL reports whether the record URL is an absolute http(s) URL.
func (r *Record) IsHTTPURL() bool {
	u := strings.ToLower(r.URL)
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// unixAny accepts seconds or milliseconds since the epoch.
func unixAny(v int64) time.Time {
	// Anything past year 33658 in seconds is really milliseconds.
	if v > 1e12 {
		return time.UnixMilli(v).UTC()
	}
	return time.Unix(v, 0).UTC()
}

func (r *Record) metaString(key string) string {
	v, ok := r.Metadata[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func (r *Record) metaBool(key string) bool {
	v, ok := r.Metadata[key]
	if !ok || v == nil {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		return err == nil && parsed
	}
	return false
}

// metaInt handles the shapes JSON and TOML decoding produce.
func (r *Record) metaInt(key string) (int, bool) {
	v, ok := r.Metadata[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}
