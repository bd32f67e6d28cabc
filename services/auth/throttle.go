package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// OTPThrottle caps how many codes a single phone number can be sent per hour.
type OTPThrottle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewOTPThrottle returns nil for perHour <= 0, which disables throttling.
func NewOTPThrottle(perHour int) *OTPThrottle {
	if perHour <= 0 {
		return nil
	}
	return &OTPThrottle{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Hour / time.Duration(perHour)),
		burst:    perHour,
	}
}

func (t *OTPThrottle) Allow(phone string) bool {
	if t == nil {
		return true
	}
	t.mu.Lock()
	l, ok := t.limiters[phone]
	if !ok {
		l = rate.NewLimiter(t.limit, t.burst)
		t.limiters[phone] = l
	}
	t.mu.Unlock()
	return l.Allow()
}
