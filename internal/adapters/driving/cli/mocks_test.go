package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
)

// mockLibrary implements driving.LibraryService over a fixed group list.
type mockLibrary struct {
	groups   []domain.Group
	pageSize int
	total    int
	filter   domain.Filter
	page     int
	cached   int

	added    [][]domain.Record
	deleted  []string
	info     *domain.BackendInfo
	infoErr  error
	conn     domain.ConnectionState
	addRes   *domain.MutationResult
	deleteFn func(g domain.Group) (domain.DeleteOutcome, error)
}

func newMockLibrary(groups ...domain.Group) *mockLibrary {
	return &mockLibrary{
		groups:   groups,
		pageSize: 10,
		total:    len(groups),
		cached:   len(groups),
		page:     1,
		filter:   domain.DefaultFilter(),
		conn:     domain.ConnectionState{Connected: true},
	}
}

func (m *mockLibrary) build() *domain.Page {
	start := min((m.page-1)*m.pageSize, len(m.groups))
	end := min(start+m.pageSize, len(m.groups))
	totalPages := (m.total + m.pageSize - 1) / m.pageSize
	return &domain.Page{
		Items:       m.groups[start:end],
		Page:        m.page,
		PageSize:    m.pageSize,
		TotalGroups: len(m.groups),
		TotalPages:  max(totalPages, 1),
		CachedCount: m.cached,
		ServerTotal: m.total,
		HasMore:     m.cached < m.total,
	}
}

func (m *mockLibrary) GetCurrentPage(context.Context) (*domain.Page, error) { return m.build(), nil }
func (m *mockLibrary) Refresh(context.Context) (*domain.Page, error)        { return m.build(), nil }

func (m *mockLibrary) LoadMore(context.Context) (*domain.Page, error) {
	m.cached = m.total
	return m.build(), nil
}

func (m *mockLibrary) GoToPage(_ context.Context, n int) (*domain.Page, error) {
	if n < 1 {
		return nil, domain.ErrInvalidInput
	}
	m.page = n
	return m.build(), nil
}

func (m *mockLibrary) SetFilter(_ context.Context, f domain.Filter) (*domain.Page, error) {
	if !f.Date.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	m.filter = f
	m.page = 1
	return m.build(), nil
}

func (m *mockLibrary) Filter() domain.Filter { return m.filter }

func (m *mockLibrary) FindGroup(_ context.Context, key string) (*domain.Group, error) {
	for i := range m.groups {
		if m.groups[i].Key == key {
			return &m.groups[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockLibrary) RequestDelete(_ context.Context, g domain.Group) (domain.DeleteOutcome, error) {
	if m.deleteFn != nil {
		return m.deleteFn(g)
	}
	m.deleted = append(m.deleted, g.Key)
	return domain.DeleteOutcome{Deleted: g.LeafCount()}, nil
}

func (m *mockLibrary) Add(_ context.Context, records []domain.Record) (*domain.MutationResult, error) {
	m.added = append(m.added, records)
	if m.addRes != nil {
		return m.addRes, nil
	}
	return &domain.MutationResult{Success: true}, nil
}

func (m *mockLibrary) ConnectionState() domain.ConnectionState { return m.conn }
func (m *mockLibrary) Info() *domain.BackendInfo               { return m.info }

func (m *mockLibrary) LoadInfo(context.Context) (*domain.BackendInfo, error) {
	return m.info, m.infoErr
}

// mockAssistant implements driving.AssistantService.
type mockAssistant struct {
	available bool
	answer    string
	err       error
	lastKey   string
	lastQ     string
	lastMax   int
}

func (m *mockAssistant) Ask(_ context.Context, key, question string) (string, error) {
	m.lastKey, m.lastQ = key, question
	return m.answer, m.err
}

func (m *mockAssistant) Summarise(_ context.Context, key string, maxChars int) (string, error) {
	m.lastKey, m.lastMax = key, maxChars
	return m.answer, m.err
}

func (m *mockAssistant) Available() bool { return m.available }

// mockSettings implements driving.SettingsService in memory.
type mockSettings struct {
	settings    domain.AppSettings
	validateErr error
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettings) SetBackend(kind domain.BackendKind, url string) error {
	if !kind.IsValid() {
		return domain.ErrUnsupportedType
	}
	m.settings.Backend.Kind = kind
	if url != "" {
		m.settings.Backend.URL = url
	}
	return nil
}

func (m *mockSettings) SetPageSize(size int) error {
	if size < 1 {
		return domain.ErrInvalidInput
	}
	m.settings.Library.PageSize = size
	return nil
}

func (m *mockSettings) SetAssistant(a domain.AssistantSettings) error {
	if !a.Provider.IsValid() {
		return domain.ErrUnsupportedType
	}
	m.settings.Assistant = a
	return nil
}

func (m *mockSettings) Validate() error                 { return m.validateErr }
func (m *mockSettings) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

type testFixture struct {
	library   *mockLibrary
	assistant *mockAssistant
	settings  *mockSettings
}

// setupTestServices installs mocks and restores the previous services when
// the test ends.
func setupTestServices(t *testing.T, groups ...domain.Group) *testFixture {
	t.Helper()
	fx := &testFixture{
		library:   newMockLibrary(groups...),
		assistant: &mockAssistant{},
		settings:  &mockSettings{settings: domain.DefaultAppSettings()},
	}
	prev := Services{
		Library:       libraryService,
		Assistant:     assistantService,
		Settings:      settingsService,
		Notifications: notifications,
		WatchDir:      watchDir,
		Start:         startServices,
	}
	SetServices(Services{Library: fx.library, Assistant: fx.assistant, Settings: fx.settings})
	t.Cleanup(func() { SetServices(prev) })
	return fx
}

// runCLI executes the root command with args and returns combined output.
// Flags are reset first so values do not leak between tests.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLIWithInput(t, "", args...)
}

func runCLIWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func singleGroup(key, title string) domain.Group {
	return domain.Group{
		Key:     key,
		Kind:    domain.GroupSingle,
		Title:   title,
		Records: []domain.Record{{ID: key + "-r", URL: title, ContentType: domain.ContentTypeDocument}},
	}
}

func chunkGroup(key, title string, n int) domain.Group {
	g := domain.Group{Key: key, Kind: domain.GroupChunks, Title: title, TotalChunks: n, BaseURL: title}
	for i := 0; i < n; i++ {
		g.Records = append(g.Records, domain.Record{ID: key + "-" + string(rune('a'+i)), ContentType: domain.ContentTypeDocument})
	}
	return g
}
