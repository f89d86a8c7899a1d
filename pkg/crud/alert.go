package crud

import (
	"sync"
	"time"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

const (
	// AlertTTL is how long an alert stays visible.
	AlertTTL = 6 * time.Second
	// DuplicateWindow suppresses re-showing the same toast message.
	DuplicateWindow = 3 * time.Second
)

type Alert struct {
	Severity     Severity
	Message      string
	DismissAfter time.Duration
}

// Notifier holds at most one visible alert. With a non-zero window it drops
// an identical message shown again inside that window.
type Notifier struct {
	mu      sync.Mutex
	now     func() time.Time
	window  time.Duration
	current *Alert
	shownAt time.Time
	last    string
	lastAt  time.Time
	ttl     time.Duration
}

func NewNotifier(now func() time.Time, window time.Duration) *Notifier {
	if now == nil {
		now = time.Now
	}
	return &Notifier{now: now, window: window, ttl: AlertTTL}
}

// Show replaces the visible alert. It returns false when the message was suppressed.
func (n *Notifier) Show(severity Severity, message string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	if n.window > 0 && message == n.last && now.Sub(n.lastAt) < n.window {
		return false
	}
	n.last = message
	n.lastAt = now
	n.current = &Alert{Severity: severity, Message: message, DismissAfter: n.ttl}
	n.shownAt = now
	return true
}

// Current returns the visible alert, or nil once it expired or was dismissed.
func (n *Notifier) Current() *Alert {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.current == nil {
		return nil
	}
	if n.now().Sub(n.shownAt) >= n.ttl {
		n.current = nil
		return nil
	}
	a := *n.current
	return &a
}

// Dismiss hides the alert and forgets the last message.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = nil
	n.last = ""
}
