package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// PageInput is the input schema for the library_page tool.
type PageInput struct {
	Page        int    `json:"page,omitempty" jsonschema:"1-based page number; omit for the current page"`
	DateFilter  string `json:"date_filter,omitempty" jsonschema:"one of all, today, week, month; omit to keep the active filter"`
	ContentType string `json:"content_type,omitempty" jsonschema:"document or image; use all to clear; omit to keep the active filter"`
}

// PageOutput is the output schema for the page tools.
type PageOutput struct {
	Page        int           `json:"page"`
	TotalPages  int           `json:"total_pages"`
	TotalGroups int           `json:"total_groups"`
	CachedCount int           `json:"cached_count"`
	ServerTotal int           `json:"server_total"`
	HasMore     bool          `json:"has_more"`
	Filter      FilterOutput  `json:"filter"`
	Groups      []GroupOutput `json:"groups"`
}

// FilterOutput is the active filter.
type FilterOutput struct {
	Date        string `json:"date"`
	ContentType string `json:"content_type,omitempty"`
}

// GroupOutput summarises a group.
type GroupOutput struct {
	Key         string `json:"key"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	ContentType string `json:"content_type"`
	Records     int    `json:"records"`
	Complete    bool   `json:"complete"`
	Collection  string `json:"collection,omitempty"`
	Added       string `json:"added,omitempty"`
	Resource    string `json:"resource"`
}

// LoadMoreInput is the (empty) input schema for library_load_more.
type LoadMoreInput struct{}

// DeleteInput is the input schema for library_delete_group.
type DeleteInput struct {
	Key string `json:"key" jsonschema:"the group key as returned by library_page"`
}

// DeleteOutput reports the joined result of a group delete.
type DeleteOutput struct {
	Key     string `json:"key"`
	Deleted int    `json:"deleted"`
	Failed  int    `json:"failed"`
}

// InfoInput is the input schema for library_info.
type InfoInput struct {
	TimeoutSeconds int `json:"timeout_seconds,omitempty" jsonschema:"how long to wait for the info payload (default 10)"`
}

// InfoOutput is the backend info plus connection health.
type InfoOutput struct {
	Documents           int            `json:"documents"`
	Images              int            `json:"images"`
	Collections         []string       `json:"collections,omitempty"`
	Extra               map[string]any `json:"extra,omitempty"`
	Connected           bool           `json:"connected"`
	ConsecutiveFailures int            `json:"consecutive_failures"`
}

// AskInput is the input schema for library_ask.
type AskInput struct {
	Key      string `json:"key" jsonschema:"the group key to ask about"`
	Question string `json:"question,omitempty" jsonschema:"the question; omit to get a summary"`
	MaxChars int    `json:"max_chars,omitempty" jsonschema:"summary length bound when no question is given (default 280)"`
}

// AskOutput is the assistant's answer.
type AskOutput struct {
	Key    string `json:"key"`
	Answer string `json:"answer"`
}

const (
	defaultInfoTimeout = 10 * time.Second
	defaultSummaryLen  = 280
)

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "library_page",
		Description: "List one page of library groups, optionally changing the filter first",
	}, s.handlePage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "library_load_more",
		Description: "Fetch the next batch of records from the backend and return the current page",
	}, s.handleLoadMore)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "library_delete_group",
		Description: "Delete a group and every record it contains",
	}, s.handleDeleteGroup)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "library_info",
		Description: "Report backend statistics and connection health",
	}, s.handleInfo)

	if s.ports.Assistant != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "library_ask",
			Description: "Ask a question about a group, or summarise it",
		}, s.handleAsk)
	}
}

func (s *Server) handlePage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PageInput,
) (*mcp.CallToolResult, PageOutput, error) {
	lib := s.ports.Library

	filter, changed, err := mergeFilter(lib.Filter(), input)
	if err != nil {
		return nil, PageOutput{}, err
	}

	var page *domain.Page
	switch {
	case changed:
		page, err = lib.SetFilter(ctx, filter)
		if err == nil && input.Page > 1 {
			page, err = lib.GoToPage(ctx, input.Page)
		}
	case input.Page > 0:
		page, err = lib.GoToPage(ctx, input.Page)
	default:
		page, err = lib.GetCurrentPage(ctx)
	}
	if err != nil {
		return nil, PageOutput{}, err
	}
	return nil, toPageOutput(page, lib.Filter()), nil
}

// mergeFilter applies the filter fields present in input to current.
func mergeFilter(current domain.Filter, input PageInput) (domain.Filter, bool, error) {
	next := current
	if input.DateFilter != "" {
		d := domain.DateFilter(input.DateFilter)
		if !d.IsValid() {
			return current, false, fmt.Errorf("%w: date_filter %q", domain.ErrInvalidInput, input.DateFilter)
		}
		next.Date = d
	}
	switch input.ContentType {
	case "":
	case "all":
		next.ContentType = ""
	default:
		ct := domain.ContentType(input.ContentType)
		if !ct.IsValid() {
			return current, false, fmt.Errorf("%w: content_type %q", domain.ErrUnsupportedType, input.ContentType)
		}
		next.ContentType = ct
	}
	return next, next != current, nil
}

func (s *Server) handleLoadMore(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ LoadMoreInput,
) (*mcp.CallToolResult, PageOutput, error) {
	page, err := s.ports.Library.LoadMore(ctx)
	if err != nil {
		return nil, PageOutput{}, err
	}
	return nil, toPageOutput(page, s.ports.Library.Filter()), nil
}

func (s *Server) handleDeleteGroup(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteInput,
) (*mcp.CallToolResult, DeleteOutput, error) {
	if input.Key == "" {
		return nil, DeleteOutput{}, fmt.Errorf("%w: key is required", domain.ErrInvalidInput)
	}

	group, err := s.ports.Library.FindGroup(ctx, input.Key)
	if err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("group %q: %w", input.Key, err)
	}

	outcome, err := s.ports.Library.RequestDelete(ctx, *group)
	out := DeleteOutput{Key: input.Key, Deleted: outcome.Deleted, Failed: outcome.Failed}
	if err != nil {
		s.log.Warn("delete group",
			zap.String("key", input.Key), zap.Int("deleted", outcome.Deleted), zap.Int("failed", outcome.Failed))
		return nil, out, fmt.Errorf("deleted %d of %d records: %w", outcome.Deleted, outcome.Total(), err)
	}
	return nil, out, nil
}

func (s *Server) handleInfo(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input InfoInput,
) (*mcp.CallToolResult, InfoOutput, error) {
	timeout := defaultInfoTimeout
	if input.TimeoutSeconds > 0 {
		timeout = time.Duration(input.TimeoutSeconds) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	info, err := s.ports.Library.LoadInfo(ctx)
	if err != nil {
		return nil, InfoOutput{}, err
	}
	conn := s.ports.Library.ConnectionState()
	return nil, InfoOutput{
		Documents:           info.Documents,
		Images:              info.Images,
		Collections:         info.Collections,
		Extra:               info.Extra,
		Connected:           conn.Connected,
		ConsecutiveFailures: conn.ConsecutiveFailures,
	}, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if !s.ports.Assistant.Available() {
		return nil, AskOutput{}, ErrAssistantUnavailable
	}
	if input.Key == "" {
		return nil, AskOutput{}, fmt.Errorf("%w: key is required", domain.ErrInvalidInput)
	}

	var (
		answer string
		err    error
	)
	if input.Question != "" {
		answer, err = s.ports.Assistant.Ask(ctx, input.Key, input.Question)
	} else {
		maxChars := input.MaxChars
		if maxChars <= 0 {
			maxChars = defaultSummaryLen
		}
		answer, err = s.ports.Assistant.Summarise(ctx, input.Key, maxChars)
	}
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Key: input.Key, Answer: answer}, nil
}

func toPageOutput(p *domain.Page, f domain.Filter) PageOutput {
	out := PageOutput{
		Page:        p.Page,
		TotalPages:  p.TotalPages,
		TotalGroups: p.TotalGroups,
		CachedCount: p.CachedCount,
		ServerTotal: p.ServerTotal,
		HasMore:     p.HasMore,
		Filter:      FilterOutput{Date: string(f.Date), ContentType: string(f.ContentType)},
		Groups:      make([]GroupOutput, 0, len(p.Items)),
	}
	for i := range p.Items {
		out.Groups = append(out.Groups, toGroupOutput(&p.Items[i]))
	}
	return out
}

func toGroupOutput(g *domain.Group) GroupOutput {
	out := GroupOutput{
		Key:         g.Key,
		Kind:        g.Kind.String(),
		Title:       g.Title,
		ContentType: g.ContentType().String(),
		Records:     g.LeafCount(),
		Complete:    g.IsComplete(),
		Collection:  g.Collection,
		Resource:    groupURI(g.Key),
	}
	if !g.LatestAdded.IsZero() {
		out.Added = g.LatestAdded.UTC().Format(time.RFC3339)
	}
	return out
}
