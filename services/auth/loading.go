package auth

import "sync"

// Op names an operation whose in-flight state is tracked.
type Op string

const (
	OpLogin            Op = "login"
	OpLinkEmail        Op = "link-email"
	OpSendCode         Op = "send-code"
	OpVerifyCodeSignIn Op = "verify-code-signin"
	OpVerifyCodeLink   Op = "verify-code-link"
	OpSignInWithPhone  Op = "signin-with-phone"
)

var allOps = []Op{OpLogin, OpLinkEmail, OpSendCode, OpVerifyCodeSignIn, OpVerifyCodeLink, OpSignInWithPhone}

// Ops returns every tracked operation.
func Ops() []Op {
	return append([]Op(nil), allOps...)
}

// ParseOp validates an operation name.
func ParseOp(s string) (Op, bool) {
	for _, op := range allOps {
		if string(op) == s {
			return op, true
		}
	}
	return "", false
}

type flagKey struct {
	scope string
	op    Op
}

// Tracker holds one boolean loading flag per (scope, operation).
// Scopes are independent: a client device id in the HTTP layer.
type Tracker struct {
	mu      sync.Mutex
	flags   map[flagKey]bool
	subs    map[flagKey]map[int]func(bool)
	nextSub int
}

func NewTracker() *Tracker {
	return &Tracker{
		flags: make(map[flagKey]bool),
		subs:  make(map[flagKey]map[int]func(bool)),
	}
}

// Begin raises the flag unconditionally.
func (t *Tracker) Begin(scope string, op Op) {
	t.set(flagKey{scope, op}, true, false)
}

// TryBegin raises the flag only if it is currently down.
func (t *Tracker) TryBegin(scope string, op Op) bool {
	return t.set(flagKey{scope, op}, true, true)
}

// End lowers the flag.
func (t *Tracker) End(scope string, op Op) {
	t.set(flagKey{scope, op}, false, false)
}

// Loading reports the current flag value.
func (t *Tracker) Loading(scope string, op Op) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flags[flagKey{scope, op}]
}

// Snapshot returns every flag for scope.
func (t *Tracker) Snapshot(scope string) map[Op]bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[Op]bool, len(allOps))
	for _, op := range allOps {
		out[op] = t.flags[flagKey{scope, op}]
	}
	return out
}

// Subscribe calls fn on every Begin and End of (scope, op). The returned func unsubscribes.
func (t *Tracker) Subscribe(scope string, op Op, fn func(loading bool)) func() {
	key := flagKey{scope, op}
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	if t.subs[key] == nil {
		t.subs[key] = make(map[int]func(bool))
	}
	t.subs[key][id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs[key], id)
		if len(t.subs[key]) == 0 {
			delete(t.subs, key)
		}
	}
}

func (t *Tracker) set(key flagKey, value, exclusive bool) bool {
	t.mu.Lock()
	if exclusive && t.flags[key] {
		t.mu.Unlock()
		return false
	}
	if value {
		t.flags[key] = true
	} else {
		delete(t.flags, key)
	}
	subs := make([]func(bool), 0, len(t.subs[key]))
	for _, fn := range t.subs[key] {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
	return true
}
