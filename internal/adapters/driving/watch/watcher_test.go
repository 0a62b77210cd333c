package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/ingest"
)

type mockSubmitter struct {
	mu      sync.Mutex
	calls   [][]domain.Record
	AddFunc func(records []domain.Record) (*domain.MutationResult, error)
}

func (m *mockSubmitter) Add(_ context.Context, records []domain.Record) (*domain.MutationResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, records)
	m.mu.Unlock()
	if m.AddFunc != nil {
		return m.AddFunc(records)
	}
	return &domain.MutationResult{Success: true}, nil
}

func (m *mockSubmitter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func startWatcher(t *testing.T, dir string, sub Submitter, opts ...Option) <-chan Result {
	t.Helper()
	results := make(chan Result, 16)
	opts = append([]Option{WithDebounce(20 * time.Millisecond), WithResults(results)}, opts...)
	w := New(dir, sub, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("watcher did not stop")
		}
	})

	// Run creates the subdirectories before it starts watching.
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, FailedDir))
		return err == nil
	}, time.Second, 5*time.Millisecond)
	return results
}

func waitResult(t *testing.T, results <-chan Result) Result {
	t.Helper()
	select {
	case res := <-results:
		return res
	case <-time.After(3 * time.Second):
		t.Fatal("no result")
		return Result{}
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

func TestWatcher_SubmitsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "batch.json"), []byte(`[{"id":"a"},{"id":"b"}]`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte("ignored"), 0644))
	sub := &mockSubmitter{}

	results := startWatcher(t, dir, sub)
	res := waitResult(t, results)

	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Records)
	assert.Equal(t, 1, sub.callCount())
	assert.Equal(t, []string{"image.png"}, listDir(t, dir))
	assert.Len(t, listDir(t, filepath.Join(dir, ProcessedDir)), 1)
}

func TestWatcher_SubmitsNewFiles(t *testing.T) {
	dir := t.TempDir()
	sub := &mockSubmitter{}
	results := startWatcher(t, dir, sub)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "drop.json"), []byte(`{"url":"https://example.com/a","text":"a"}`), 0644))
	res := waitResult(t, results)

	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.Records)
	sub.mu.Lock()
	assert.Equal(t, "https://example.com/a", sub.calls[0][0].URL)
	sub.mu.Unlock()

	processed := listDir(t, filepath.Join(dir, ProcessedDir))
	require.Len(t, processed, 1)
	assert.Contains(t, processed[0], "drop-")
}

func TestWatcher_SubmitsMarkdownAsChunks(t *testing.T) {
	dir := t.TempDir()
	sub := &mockSubmitter{}
	results := startWatcher(t, dir, sub, WithIngest(ingest.WithChunkSize(16)))

	body := "# Trip notes\n\nPacked the tent and the stove. Left at dawn."
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trip.md"), []byte(body), 0644))
	res := waitResult(t, results)

	require.NoError(t, res.Err)
	assert.Greater(t, res.Records, 1)
	sub.mu.Lock()
	defer sub.mu.Unlock()
	first := sub.calls[0][0]
	assert.True(t, first.IsChunk())
	assert.Equal(t, "trip.md", first.Filename())
	total, _ := first.TotalChunks()
	assert.Equal(t, res.Records, total)
}

func TestWatcher_MovesInvalidFilesToFailed(t *testing.T) {
	dir := t.TempDir()
	sub := &mockSubmitter{}
	results := startWatcher(t, dir, sub)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"contentType":"video"}`), 0644))
	res := waitResult(t, results)

	assert.ErrorIs(t, res.Err, domain.ErrUnsupportedType)
	assert.Zero(t, sub.callCount())
	assert.Len(t, listDir(t, filepath.Join(dir, FailedDir)), 1)
}

func TestWatcher_BackendRejection(t *testing.T) {
	dir := t.TempDir()
	sub := &mockSubmitter{AddFunc: func([]domain.Record) (*domain.MutationResult, error) {
		return &domain.MutationResult{Success: false, Message: "quota exceeded"}, nil
	}}
	results := startWatcher(t, dir, sub)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.json"), []byte(`{"id":"x"}`), 0644))
	res := waitResult(t, results)

	assert.ErrorIs(t, res.Err, domain.ErrBackendRejected)
	assert.Contains(t, res.Err.Error(), "quota exceeded")
	assert.Len(t, listDir(t, filepath.Join(dir, FailedDir)), 1)
}

func TestWatcher_BackendError(t *testing.T) {
	dir := t.TempDir()
	sub := &mockSubmitter{AddFunc: func([]domain.Record) (*domain.MutationResult, error) {
		return nil, errors.New("connection refused")
	}}
	results := startWatcher(t, dir, sub)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "y.json"), []byte(`{"id":"y"}`), 0644))
	res := waitResult(t, results)

	require.Error(t, res.Err)
	assert.Len(t, listDir(t, filepath.Join(dir, FailedDir)), 1)
}

func TestWatcher_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")

	startWatcher(t, dir, &mockSubmitter{})

	for _, sub := range []string{ProcessedDir, FailedDir} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestIsRecordFile(t *testing.T) {
	assert.True(t, isRecordFile("/drop/a.json"))
	assert.True(t, isRecordFile("/drop/A.JSON"))
	assert.True(t, isRecordFile("/drop/a.txt"))
	assert.True(t, isRecordFile("/drop/notes.md"))
	assert.False(t, isRecordFile("/drop/a.png"))
	assert.False(t, isRecordFile("/drop/.hidden.json"))
}

func TestStampedName(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

	assert.Equal(t, "batch-20250301T123000.000000000.json", stampedName("batch.json", now))
}
