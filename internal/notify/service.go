package notify

import (
	"errors"
	"time"
)

var (
	// ErrUnknownHandle is returned by Cancel when no pending notification
	// matches the handle. Callers that only care about the end state treat
	// it as success.
	ErrUnknownHandle = errors.New("notify: unknown notification handle")

	ErrInvalidDelay = errors.New("notify: first fire delay must be positive")
	ErrStopped      = errors.New("notify: engine stopped")
)

// Service is the local notification capability consumed by the reminder
// scheduler: request permission, schedule a daily-repeating notification
// after an initial delay, cancel by handle.
type Service interface {
	RequestPermission() (bool, error)
	ScheduleDaily(title, body string, firstFireDelay time.Duration, payload map[string]string) (string, error)
	Cancel(handle string) error
}

// Sink delivers a single notification to the user. The engine decides when
// to fire; the sink decides how it shows up.
type Sink interface {
	Notify(title, body string, payload map[string]string) error
	// Available reports whether the delivery channel can currently be used.
	Available() bool
}
