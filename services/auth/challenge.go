package auth

import (
	"sync"
	"time"
)

// Challenge is the bot-check a phone OTP request must carry.
type Challenge interface {
	Resolved() bool
	Token() string
	Reset()
}

// Widget tracks one client's bot-check. A resolved token goes stale after ttl;
// a zero ttl never expires.
type Widget struct {
	mu         sync.Mutex
	rendered   bool
	token      string
	resolvedAt time.Time
	ttl        time.Duration
	onExpired  func()
	now        func() time.Time
}

func NewWidget(ttl time.Duration, onExpired func()) *Widget {
	return &Widget{ttl: ttl, onExpired: onExpired, now: time.Now}
}

// Render makes the widget ready to accept a token.
func (w *Widget) Render() {
	w.mu.Lock()
	w.rendered = true
	w.mu.Unlock()
}

// Resolve records a token returned by the bot-check provider.
func (w *Widget) Resolve(token string, at time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.rendered || token == "" {
		return
	}
	if at.IsZero() {
		at = w.now()
	}
	w.token = token
	w.resolvedAt = at
}

// Expire drops the token and fires the expiry callback if one was held.
func (w *Widget) Expire() {
	w.mu.Lock()
	held := w.token != ""
	w.token = ""
	w.resolvedAt = time.Time{}
	cb := w.onExpired
	w.mu.Unlock()

	if held && cb != nil {
		cb()
	}
}

// Reset drops the token silently, e.g. after a failed send.
func (w *Widget) Reset() {
	w.mu.Lock()
	w.token = ""
	w.resolvedAt = time.Time{}
	w.mu.Unlock()
}

func (w *Widget) Resolved() bool {
	w.mu.Lock()
	stale := w.token != "" && w.ttl > 0 && w.now().Sub(w.resolvedAt) > w.ttl
	ok := w.token != ""
	w.mu.Unlock()

	if stale {
		w.Expire()
		return false
	}
	return ok
}

func (w *Widget) Token() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.token
}

func (w *Widget) ResolvedAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resolvedAt
}
