package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStoreAt_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "library.toml")

	store, err := NewConfigStoreAt(path)

	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	dir, err := DefaultDir()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".sercha-library"), dir)
}

func TestConfigStore_TypedValues(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("backend.kind", "http"))
	require.NoError(t, store.Set("library.page_size", 20))
	require.NoError(t, store.Set("backend.rate_limit", 2.5))

	assert.Equal(t, "http", store.GetString("backend.kind"))
	assert.Equal(t, 20, store.GetInt("library.page_size"))
	assert.InDelta(t, 2.5, store.GetFloat("backend.rate_limit"), 0.0001)
	assert.InDelta(t, 20.0, store.GetFloat("library.page_size"), 0.0001)

	assert.Empty(t, store.GetString("library.page_size"))
	assert.Zero(t, store.GetInt("backend.kind"))
	assert.Zero(t, store.GetFloat("backend.kind"))
	assert.Zero(t, store.GetInt("missing"))
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("library.page_size", 15))
	require.NoError(t, store.Set("backend.url", "http://content:9000"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[library]")
	assert.Contains(t, string(raw), "[backend]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 15, reloaded.GetInt("library.page_size"))
	assert.Equal(t, "http://content:9000", reloaded.GetString("backend.url"))
}

func TestConfigStore_LoadHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[backend]
kind = "http"
url = "http://localhost:8000"
rate_limit = 4

[library]
page_size = 12
sort = "latest"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, "http", store.GetString("backend.kind"))
	assert.InDelta(t, 4.0, store.GetFloat("backend.rate_limit"), 0.0001)
	assert.Equal(t, 12, store.GetInt("library.page_size"))
	assert.Equal(t, "latest", store.GetString("library.sort"))
}

func TestConfigStore_LoadNonExistent(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestConfigStore_LoadInvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[library\npage_size ="), 0600))

	_, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("library.page_size", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("library.page_size")
		}()
	}
	wg.Wait()

	_, ok := store.Get("library.page_size")
	assert.True(t, ok)
}

func TestFlattenAndNestMap(t *testing.T) {
	nested := map[string]any{
		"backend": map[string]any{"kind": "local", "url": "http://x"},
		"top":     1,
	}

	flat := flattenMap(nested, "")
	assert.Equal(t, map[string]any{"backend.kind": "local", "backend.url": "http://x", "top": 1}, flat)
	assert.Equal(t, nested, nestMap(flat))
}

func TestNestMap_ValueAndTableConflict(t *testing.T) {
	flat := map[string]any{"a": 1, "a.b": 2}

	nested := nestMap(flat)

	assert.Len(t, nested, 2)
	assert.Equal(t, 1, nested["a"])
	assert.Equal(t, 2, nested["a.b"])
}
