package driven

import "github.com/custodia-labs/sercha-library/internal/core/domain"

// Notifier receives user-visible outcomes such as delete results and
// connection failures.
type Notifier interface {
	// Notify delivers a notification. Implementations must not block.
	Notify(n domain.Notification)
}
