package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// mockLibrary is a mock implementation of driving.LibraryService.
type mockLibrary struct {
	page    *domain.Page
	groups  map[string]domain.Group
	filter  domain.Filter
	info    *domain.BackendInfo
	conn    domain.ConnectionState
	outcome domain.DeleteOutcome
	err     error
	delErr  error

	calls   []string
	gotPage int
	deleted []string
}

func newMockLibrary(groups ...domain.Group) *mockLibrary {
	m := &mockLibrary{
		groups: make(map[string]domain.Group),
		filter: domain.DefaultFilter(),
		conn:   domain.ConnectionState{Connected: true},
		page:   &domain.Page{Items: groups, Page: 1, PageSize: 10, TotalGroups: len(groups), TotalPages: 1},
	}
	for _, g := range groups {
		m.groups[g.Key] = g
	}
	return m
}

func (m *mockLibrary) pageFor(call string) (*domain.Page, error) {
	m.calls = append(m.calls, call)
	if m.err != nil {
		return nil, m.err
	}
	return m.page, nil
}

func (m *mockLibrary) GetCurrentPage(context.Context) (*domain.Page, error) {
	return m.pageFor("current")
}
func (m *mockLibrary) Refresh(context.Context) (*domain.Page, error)  { return m.pageFor("refresh") }
func (m *mockLibrary) LoadMore(context.Context) (*domain.Page, error) { return m.pageFor("more") }

func (m *mockLibrary) GoToPage(_ context.Context, n int) (*domain.Page, error) {
	m.gotPage = n
	return m.pageFor("goto")
}

func (m *mockLibrary) SetFilter(_ context.Context, f domain.Filter) (*domain.Page, error) {
	m.filter = f
	return m.pageFor("filter")
}

func (m *mockLibrary) Filter() domain.Filter { return m.filter }

func (m *mockLibrary) FindGroup(_ context.Context, key string) (*domain.Group, error) {
	g, ok := m.groups[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &g, nil
}

func (m *mockLibrary) RequestDelete(_ context.Context, g domain.Group) (domain.DeleteOutcome, error) {
	m.deleted = append(m.deleted, g.Key)
	return m.outcome, m.delErr
}

func (m *mockLibrary) Add(context.Context, []domain.Record) (*domain.MutationResult, error) {
	return &domain.MutationResult{Success: true}, nil
}

func (m *mockLibrary) ConnectionState() domain.ConnectionState { return m.conn }
func (m *mockLibrary) Info() *domain.BackendInfo               { return m.info }

func (m *mockLibrary) LoadInfo(ctx context.Context) (*domain.BackendInfo, error) {
	if m.info == nil {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.info, nil
}

// mockAssistant is a mock implementation of driving.AssistantService.
type mockAssistant struct {
	available bool
	answer    string
	err       error

	question string
	maxChars int
}

func (m *mockAssistant) Ask(_ context.Context, _, question string) (string, error) {
	m.question = question
	return m.answer, m.err
}

func (m *mockAssistant) Summarise(_ context.Context, _ string, maxChars int) (string, error) {
	m.maxChars = maxChars
	return m.answer, m.err
}

func (m *mockAssistant) Available() bool { return m.available }

func chunkGroup() domain.Group {
	doc := domain.ContentTypeDocument
	return domain.Group{
		Key:          "https://example.com/guide",
		Kind:         domain.GroupChunks,
		Title:        "Guide",
		TotalChunks:  2,
		CombinedText: "part one\n\npart two",
		Records: []domain.Record{
			{ID: "c0", URL: "https://example.com/guide#chunk-0", ContentType: doc, Text: "part one",
				Metadata: map[string]any{domain.MetaChunkIndex: float64(0)}},
			{ID: "c1", URL: "https://example.com/guide#chunk-1", ContentType: doc, Text: "part two"},
		},
	}
}

func imageGroup() domain.Group {
	return domain.Group{
		Key:     "scan.pdf",
		Kind:    domain.GroupImageStack,
		Title:   "scan.pdf",
		Records: []domain.Record{{ID: "p1", ContentType: domain.ContentTypeImage}},
	}
}
