package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// pageJSON is the machine-readable form of a page.
type pageJSON struct {
	Page        int         `json:"page"`
	PageSize    int         `json:"pageSize"`
	TotalPages  int         `json:"totalPages"`
	TotalGroups int         `json:"totalGroups"`
	CachedCount int         `json:"cachedCount"`
	ServerTotal int         `json:"serverTotal"`
	HasMore     bool        `json:"hasMore"`
	Groups      []groupJSON `json:"groups"`
}

type groupJSON struct {
	Key         string          `json:"key"`
	Kind        string          `json:"kind"`
	Title       string          `json:"title"`
	ContentType string          `json:"contentType"`
	Count       int             `json:"count"`
	Complete    bool            `json:"complete"`
	Collection  string          `json:"collection,omitempty"`
	LatestAdded string          `json:"latestAdded,omitempty"`
	Records     []domain.Record `json:"records,omitempty"`
}

func toGroupJSON(g *domain.Group, withRecords bool) groupJSON {
	out := groupJSON{
		Key:         g.Key,
		Kind:        g.Kind.String(),
		Title:       g.Title,
		ContentType: g.ContentType().String(),
		Count:       g.Count(),
		Complete:    g.IsComplete(),
		Collection:  g.Collection,
	}
	if !g.LatestAdded.IsZero() {
		out.LatestAdded = g.LatestAdded.Format("2006-01-02T15:04:05Z07:00")
	}
	if withRecords {
		out.Records = g.Records
	}
	return out
}

func toPageJSON(p *domain.Page) pageJSON {
	out := pageJSON{
		Page:        p.Page,
		PageSize:    p.PageSize,
		TotalPages:  p.TotalPages,
		TotalGroups: p.TotalGroups,
		CachedCount: p.CachedCount,
		ServerTotal: p.ServerTotal,
		HasMore:     p.HasMore,
		Groups:      make([]groupJSON, 0, len(p.Items)),
	}
	for i := range p.Items {
		out.Groups = append(out.Groups, toGroupJSON(&p.Items[i], false))
	}
	return out
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printPage(cmd *cobra.Command, p *domain.Page, asJSON bool) error {
	if asJSON {
		return printJSON(cmd, toPageJSON(p))
	}

	if len(p.Items) == 0 {
		cmd.Println("No content found.")
		return nil
	}

	first := (p.Page-1)*p.PageSize + 1
	for i := range p.Items {
		g := &p.Items[i]
		cmd.Printf("  [%d] %s\n", first+i, displayTitle(g))
		cmd.Printf("      %s  %s\n", describeGroup(g), g.Key)
	}
	cmd.Println()
	cmd.Printf("Page %d of %d  (%d of %d records loaded)\n", p.Page, p.TotalPages, p.CachedCount, p.ServerTotal)
	if p.HasMore {
		cmd.Println("More records are available: run 'sercha-library more' or pick a later page.")
	}
	return nil
}

func printGroup(cmd *cobra.Command, g *domain.Group) {
	cmd.Printf("Group: %s\n\n", g.Key)
	cmd.Printf("  Title:  %s\n", displayTitle(g))
	cmd.Printf("  Kind:   %s\n", describeGroup(g))
	if g.Collection != "" {
		cmd.Printf("  Collection: %s\n", g.Collection)
	}
	if !g.LatestAdded.IsZero() {
		cmd.Printf("  Added:  %s\n", g.LatestAdded.Format("2006-01-02 15:04:05"))
	}
	cmd.Println("\n  Records:")
	for i := range g.Records {
		r := &g.Records[i]
		label := r.URL
		if label == "" {
			label = r.Filename()
		}
		cmd.Printf("    %s  %s\n", r.ID, label)
	}
}

func displayTitle(g *domain.Group) string {
	if g.Title != "" {
		return g.Title
	}
	if len(g.Records) > 0 && g.Records[0].ID != "" {
		return g.Records[0].ID
	}
	return "(untitled)"
}

func describeGroup(g *domain.Group) string {
	switch g.Kind {
	case domain.GroupChunks:
		if g.IsComplete() {
			return fmt.Sprintf("document, %d chunks", g.Count())
		}
		return fmt.Sprintf("document, %d of %d chunks", g.Count(), g.TotalChunks)
	case domain.GroupImageStack:
		return fmt.Sprintf("image stack, %d pages", g.Count())
	default:
		return g.ContentType().String()
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, strings.TrimSuffix(noun, "s"))
}
