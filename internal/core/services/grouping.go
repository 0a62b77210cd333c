package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// Group key namespaces. HTTP URLs are used verbatim and can never start
// with one of these prefixes, so keys from different rules cannot collide.
const (
	keyPrefixChunk  = "chunk:"
	keyPrefixStack  = "stack:"
	keyPrefixFile   = "file:"
	keyPrefixRecord = "record:"
)

// syntheticNamespace seeds name-based UUIDs for records without an ID.
var syntheticNamespace = uuid.MustParse("6f1d3c52-7a0e-4d8b-9a4f-2c5e8b1d0a77")

// GroupRecords maps the record cache to an ordered list of groups.
//
// Groups are returned in first-seen order. The function is pure: the same
// snapshot always yields the same groups with the same keys. Every record
// lands in exactly one group, so the leaf counts always sum to len(records).
func GroupRecords(records []domain.Record) []domain.Group {
	b := &groupBuilder{
		index: make(map[string]int, len(records)),
		order: make([]domain.Group, 0, len(records)),
		seen:  make(map[string]int),
	}
	for i := range records {
		b.add(records[i])
	}
	for i := range b.order {
		g := &b.order[i]
		if g.Kind == domain.GroupChunks {
			g.CombinedText = combineText(g.Records)
			if g.Title == "" {
				g.Title = g.BaseURL
			}
		}
	}
	return b.order
}

type groupBuilder struct {
	index map[string]int
	order []domain.Group
	// seen counts ID-less records by content, so identical records get
	// distinct keys that do not depend on where they sit in the input.
	seen map[string]int
}

func (b *groupBuilder) add(r domain.Record) {
	switch {
	case r.IsChunk() && hasMeta(&r, domain.MetaTotalChunks):
		if key, base, ok := chunkKey(&r); ok {
			b.addChunk(key, base, r)
			return
		}
		b.addSingle(b.syntheticKey(&r), r)
	case r.ContentType == domain.ContentTypeImage && r.PDFFilename() != "":
		b.addStack(keyPrefixStack+r.PDFFilename(), r)
	case r.IsHTTPURL():
		b.addSingle(b.uniqueKey(r.URL, &r), r)
	case r.Filename() != "":
		b.addSingle(b.uniqueKey(keyPrefixFile+r.Filename(), &r), r)
	default:
		b.addSingle(b.syntheticKey(&r), r)
	}
}

// chunkKey derives the chunk group key. A chunk without a usable index,
// a positive total, or any base identifier is malformed.
func chunkKey(r *domain.Record) (key, base string, ok bool) {
	if total, ok := r.TotalChunks(); !ok || total <= 0 {
		return "", "", false
	}
	if _, ok := r.ChunkIndex(); !ok {
		return "", "", false
	}
	base = r.BaseURL()
	if base == "" {
		base = r.Filename()
	}
	if base == "" {
		return "", "", false
	}
	return keyPrefixChunk + base, base, true
}

func (b *groupBuilder) addChunk(key, base string, r domain.Record) {
	g := b.lookup(key, func() domain.Group {
		total, _ := r.TotalChunks()
		return domain.Group{Key: key, Kind: domain.GroupChunks, BaseURL: base, TotalChunks: total}
	})
	g.Records = insertSorted(g.Records, r, chunkPosition)
	if g.Title == "" {
		if name := r.Filename(); name != "" {
			g.Title = name
		}
	}
	touch(g, &r)
}

func (b *groupBuilder) addStack(key string, r domain.Record) {
	g := b.lookup(key, func() domain.Group {
		return domain.Group{Key: key, Kind: domain.GroupImageStack, Title: r.PDFFilename()}
	})
	g.Records = insertSorted(g.Records, r, pagePosition)
	touch(g, &r)
}

func (b *groupBuilder) addSingle(key string, r domain.Record) {
	g := b.lookup(key, func() domain.Group {
		return domain.Group{Key: key, Kind: domain.GroupSingle, Title: singleTitle(&r)}
	})
	g.Records = append(g.Records, r)
	touch(g, &r)
}

// lookup returns the group for key, creating it with init on first sight.
func (b *groupBuilder) lookup(key string, init func() domain.Group) *domain.Group {
	if i, ok := b.index[key]; ok {
		return &b.order[i]
	}
	b.index[key] = len(b.order)
	b.order = append(b.order, init())
	return &b.order[len(b.order)-1]
}

// uniqueKey returns key unless a group already holds it, in which case the
// record falls back to a synthetic key instead of overwriting.
func (b *groupBuilder) uniqueKey(key string, r *domain.Record) string {
	if _, taken := b.index[key]; !taken {
		return key
	}
	return b.syntheticKey(r)
}

// syntheticKey returns a key no other group in this pass holds.
// Records with an ID keep "record:<id>" so the key survives refreshes.
// ID-less records are keyed by their content and by how many identical
// records came before them, so regrouping a flattened snapshot yields the
// same keys.
func (b *groupBuilder) syntheticKey(r *domain.Record) string {
	var key string
	if r.ID != "" {
		key = keyPrefixRecord + r.ID
	} else {
		content := fmt.Sprintf("%s\x00%s\x00%s\x00%v", r.ContentType, r.URL, r.Text, r.Metadata)
		n := b.seen[content]
		b.seen[content] = n + 1
		name := fmt.Sprintf("%s\x00%d", content, n)
		key = keyPrefixRecord + uuid.NewSHA1(syntheticNamespace, []byte(name)).String()
	}
	candidate := key
	for n := 1; ; n++ {
		if _, taken := b.index[candidate]; !taken {
			return candidate
		}
		candidate = fmt.Sprintf("%s~%d", key, n)
	}
}

// touch folds a new leaf into the group's display metadata.
func touch(g *domain.Group, r *domain.Record) {
	if g.Collection == "" {
		g.Collection = r.Collection()
	}
	if added := r.DateAdded(); added.After(g.LatestAdded) {
		g.LatestAdded = added
	}
}

func singleTitle(r *domain.Record) string {
	for _, s := range []string{r.Filename(), r.PDFFilename(), r.BaseURL(), r.URL, r.ID} {
		if s != "" {
			return s
		}
	}
	return ""
}

func chunkPosition(r *domain.Record) int {
	idx, _ := r.ChunkIndex()
	return idx
}

// pagePosition sorts images without a page number after every numbered page.
func pagePosition(r *domain.Record) int {
	if page, ok := r.PDFPageNumber(); ok {
		return page
	}
	return math.MaxInt
}

// insertSorted places r after every leaf with a position <= its own,
// which keeps equal positions in arrival order.
func insertSorted(leaves []domain.Record, r domain.Record, pos func(*domain.Record) int) []domain.Record {
	p := pos(&r)
	i := sort.Search(len(leaves), func(i int) bool { return pos(&leaves[i]) > p })
	leaves = append(leaves, domain.Record{})
	copy(leaves[i+1:], leaves[i:])
	leaves[i] = r
	return leaves
}

func combineText(leaves []domain.Record) string {
	var sb strings.Builder
	for i := range leaves {
		sb.WriteString(leaves[i].Text)
	}
	return sb.String()
}

func hasMeta(r *domain.Record, key string) bool {
	v, ok := r.Metadata[key]
	return ok && v != nil
}
