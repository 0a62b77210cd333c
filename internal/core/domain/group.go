package domain

import "time"

// GroupKind tags the variant of a Group.
type GroupKind int

const (
	// GroupSingle wraps exactly one record.
	GroupSingle GroupKind = iota
	// GroupChunks is a document split into sequential chunk records.
	GroupChunks
	// GroupImageStack is a set of images extracted from one source file.
	GroupImageStack
)

// String returns the string representation of the kind.
func (k GroupKind) String() string {
	switch k {
	case GroupSingle:
		return "single"
	case GroupChunks:
		return "chunks"
	case GroupImageStack:
		return "image_stack"
	default:
		return "unknown"
	}
}

// Group is a render-ready aggregate of one or more records sharing a source.
// Only the fields relevant to Kind are populated.
type Group struct {
	// Key is the group key the leaves were collected under.
	Key string

	// Kind selects the variant.
	Kind GroupKind

	// Records are the leaves. Chunk groups are ordered by chunk index,
	// image stacks by page number. A single holds exactly one.
	Records []Record

	// Title is the canonical display name: the first-seen filename,
	// pdf filename, base URL or URL.
	Title string

	// BaseURL is the chunk group's URL without its fragment suffix.
	BaseURL string

	// Collection is the first non-empty collection seen among the leaves.
	Collection string

	// LatestAdded is the maximum dateAdded among the leaves.
	LatestAdded time.Time

	// TotalChunks is the declared chunk count of a chunk group.
	TotalChunks int

	// CombinedText is the concatenated leaf text of a chunk group.
	CombinedText string
}

// LeafCount returns the number of records in the group.
func (g *Group) LeafCount() int {
	return len(g.Records)
}

// LeafIDs resolves the group to the identifiers of its records.
func (g *Group) LeafIDs() []string {
	ids := make([]string, len(g.Records))
	for i := range g.Records {
		ids[i] = g.Records[i].ID
	}
	return ids
}

// Leaves returns the group's records.
func (g *Group) Leaves() []Record {
	return g.Records
}

// IsComposite reports whether the group can hold more than one record.
func (g *Group) IsComposite() bool {
	return g.Kind != GroupSingle
}

// Count returns the number of images in a stack, or the leaf count otherwise.
func (g *Group) Count() int {
	return len(g.Records)
}

// ContentType returns the content type of the first leaf.
func (g *Group) ContentType() ContentType {
	if len(g.Records) == 0 {
		return ""
	}
	return g.Records[0].ContentType
}

// IsComplete reports whether a chunk group holds every declared chunk.
// Non-chunk groups are always complete.
func (g *Group) IsComplete() bool {
	if g.Kind != GroupChunks {
		return true
	}
	return g.TotalChunks > 0 && len(g.Records) >= g.TotalChunks
}

// FlattenGroups returns the leaves of all groups in group order.
func FlattenGroups(groups []Group) []Record {
	n := 0
	for i := range groups {
		n += len(groups[i].Records)
	}
	out := make([]Record, 0, n)
	for i := range groups {
		out = append(out, groups[i].Records...)
	}
	return out
}
