// Package watch turns a drop folder into a feed of new library content.
// JSON record files, plain text and markdown written into the folder are
// submitted through the library's Add operation and then moved aside so
// they are only sent once.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/ingest"
)

const (
	defaultDebounce = 300 * time.Millisecond

	// ProcessedDir and FailedDir are created inside the watched folder.
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// Submitter accepts new records. driving.LibraryService satisfies it.
type Submitter interface {
	Add(ctx context.Context, records []domain.Record) (*domain.MutationResult, error)
}

// Result reports what happened to one dropped file.
type Result struct {
	Path    string
	Records int
	Err     error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// WithDebounce sets how long a file must be quiet before it is read.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithIngest sets the options used to convert text and markdown files.
func WithIngest(opts ...ingest.Option) Option {
	return func(w *Watcher) { w.ingest = opts }
}

// WithResults sends a Result for every file handled. Sends never block.
func WithResults(ch chan<- Result) Option {
	return func(w *Watcher) { w.results = ch }
}

// Watcher watches one directory, non-recursively, for record files.
type Watcher struct {
	dir      string
	submit   Submitter
	log      *zap.Logger
	debounce time.Duration
	results  chan<- Result
	ingest   []ingest.Option

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	pending map[string]*time.Timer
	wg      sync.WaitGroup
	done    chan struct{}
}

// New creates a Watcher for dir.
func New(dir string, submit Submitter, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      filepath.Clean(dir),
		submit:   submit,
		log:      zap.NewNop(),
		debounce: defaultDebounce,
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.Named("watch")
	return w
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run watches until ctx is cancelled. Files already present when Run starts
// are submitted first.
func (w *Watcher) Run(ctx context.Context) error {
	for _, sub := range []string{"", ProcessedDir, FailedDir} {
		if err := os.MkdirAll(filepath.Join(w.dir, sub), 0755); err != nil {
			return fmt.Errorf("create watch directory: %w", err)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	w.log.Info("watching for record files", zap.String("dir", w.dir))
	w.syncExisting(ctx)

	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	if !isRecordFile(ev.Name) || filepath.Dir(ev.Name) != w.dir {
		return
	}
	w.log.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))

	switch {
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		w.schedule(ctx, ev.Name)
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.cancel(ev.Name)
	}
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.done:
		return
	default:
	}
	if t, ok := w.pending[path]; ok && t.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.process(ctx, path)
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
}

func (w *Watcher) syncExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.log.Warn("list watch directory", zap.Error(err))
		return
	}
	for _, e := range entries {
		if e.Type().IsRegular() && isRecordFile(e.Name()) {
			w.process(ctx, filepath.Join(w.dir, e.Name()))
		}
	}
}

// process submits one file and moves it into processed/ or failed/.
func (w *Watcher) process(ctx context.Context, path string) {
	res := Result{Path: path}
	defer func() { w.report(res) }()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			res.Err = err
			w.log.Warn("read record file", zap.String("path", path), zap.Error(err))
		}
		return
	}

	records, err := w.decode(path, data)
	if err == nil {
		var mr *domain.MutationResult
		mr, err = w.submit.Add(ctx, records)
		if err == nil && !mr.Success {
			err = fmt.Errorf("%w: %s", domain.ErrBackendRejected, mr.Message)
		}
	}

	target := ProcessedDir
	if err != nil {
		target = FailedDir
		res.Err = err
		w.log.Warn("record file rejected", zap.String("path", path), zap.Error(err))
	} else {
		res.Records = len(records)
		w.log.Info("record file submitted", zap.String("path", path), zap.Int("records", len(records)))
	}

	dest := filepath.Join(w.dir, target, stampedName(filepath.Base(path), time.Now()))
	if mvErr := os.Rename(path, dest); mvErr != nil {
		w.log.Warn("move record file", zap.String("path", path), zap.Error(mvErr))
	}
}

// decode parses JSON record files and converts everything else by extension.
func (w *Watcher) decode(path string, data []byte) ([]domain.Record, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseRecords(data)
	}
	return ingest.FromFile(path, data, w.ingest...)
}

func (w *Watcher) report(res Result) {
	if w.results == nil || (res.Err == nil && res.Records == 0) {
		return
	}
	select {
	case w.results <- res:
	default:
	}
}

// stop cancels pending timers, waits for in-flight files and closes the
// fsnotify watcher.
func (w *Watcher) stop() {
	w.mu.Lock()
	close(w.done)
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	fsw := w.fsw
	w.fsw = nil
	w.mu.Unlock()

	w.wg.Wait()
	if fsw != nil {
		_ = fsw.Close()
	}
}

func isRecordFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".json") || ingest.Supported(name)
}

// stampedName keeps moved files unique when the same name is dropped twice.
func stampedName(name string, now time.Time) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "-" + now.UTC().Format("20060102T150405.000000000") + ext
}
