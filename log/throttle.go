package log

import (
	"sync/atomic"

	"golang.org/x/time/rate"
)

const (
	DefaultWarnRateLimit      = 20
	DefaultWarnRateLimitBurst = 60
)

// ThrottledLogger drops Warn messages above a fixed rate. Every other level
// passes through. The number of dropped messages is reported by Dropped.
type ThrottledLogger struct {
	Logger
	lim     *rate.Limiter
	dropped *uint64
}

// Throttle wraps l so that at most perSecond warnings are logged per second.
// A non-positive perSecond disables throttling.
func Throttle(l Logger, perSecond int) *ThrottledLogger {
	lim := rate.NewLimiter(rate.Inf, 0)
	if perSecond > 0 {
		lim = rate.NewLimiter(rate.Limit(perSecond), perSecond*3)
	}
	return &ThrottledLogger{
		Logger:  l,
		lim:     lim,
		dropped: new(uint64),
	}
}

func (t *ThrottledLogger) Warn(msg string, fields ...interface{}) {
	if !t.lim.Allow() {
		atomic.AddUint64(t.dropped, 1)
		return
	}
	t.Logger.Warn(msg, fields...)
}

func (t *ThrottledLogger) Sub(fields ...interface{}) Logger {
	return &ThrottledLogger{
		Logger:  t.Logger.Sub(fields...),
		lim:     t.lim,
		dropped: t.dropped,
	}
}

func (t *ThrottledLogger) Dropped() uint64 {
	return atomic.LoadUint64(t.dropped)
}
