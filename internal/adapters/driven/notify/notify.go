// Package notify delivers user-visible outcomes to the log and to any
// interactive surface that subscribes to them.
package notify

import (
	"sync"

	"go.uber.org/zap"

	"github.com/custodia-labs/sercha-library/internal/core/domain"
	"github.com/custodia-labs/sercha-library/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.Notifier = (*Recorder)(nil)

// DefaultHistory is the number of notifications kept when none is given.
const DefaultHistory = 20

// Recorder logs every notification, keeps the most recent ones and fans
// them out to subscribers. Notify never blocks; a subscriber that is not
// keeping up misses notifications rather than stalling the caller.
type Recorder struct {
	log   *zap.Logger
	limit int

	mu     sync.Mutex
	recent []domain.Notification
	subs   map[int]chan domain.Notification
	nextID int
}

// New creates a Recorder. A nil logger discards log output.
func New(log *zap.Logger, history int) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	if history <= 0 {
		history = DefaultHistory
	}
	return &Recorder{
		log:   log.Named("notify"),
		limit: history,
		subs:  make(map[int]chan domain.Notification),
	}
}

// Notify records n.
func (r *Recorder) Notify(n domain.Notification) {
	fields := []zap.Field{zap.Stringer("severity", n.Severity)}
	switch n.Severity {
	case domain.SeverityError:
		r.log.Error(n.Message, fields...)
	case domain.SeverityWarning:
		r.log.Warn(n.Message, fields...)
	default:
		r.log.Info(n.Message, fields...)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.recent = append(r.recent, n)
	if over := len(r.recent) - r.limit; over > 0 {
		r.recent = append(r.recent[:0], r.recent[over:]...)
	}
	for _, ch := range r.subs {
		select {
		case ch <- n:
		default:
		}
	}
}

// Recent returns the retained notifications, oldest first.
func (r *Recorder) Recent() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Notification, len(r.recent))
	copy(out, r.recent)
	return out
}

// Latest returns the newest notification, if any.
func (r *Recorder) Latest() (domain.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.recent) == 0 {
		return domain.Notification{}, false
	}
	return r.recent[len(r.recent)-1], true
}

// Subscribe returns a channel of future notifications and a function that
// unsubscribes and closes it.
func (r *Recorder) Subscribe(buffer int) (<-chan domain.Notification, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan domain.Notification, buffer)

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = ch
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
			close(ch)
		})
	}
}
