package record

import (
	"fmt"
	"sync"

	"dxf/log"
)

// Diagnostic is a non-fatal problem found while decoding or encoding.
type Diagnostic struct {
	Record  string
	Line    int
	Code    int
	Message string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s: line %d: code %d: %s", d.Record, d.Line, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: code %d: %s", d.Record, d.Code, d.Message)
}

type Diagnostics []Diagnostic

// HasCode reports whether any diagnostic concerns code.
func (ds Diagnostics) HasCode(code int) bool {
	for _, d := range ds {
		if d.Code == code {
			return true
		}
	}
	return false
}

var (
	lgrMtx sync.RWMutex
	lgr    = log.Throttle(log.WithModule("record"), log.DefaultWarnRateLimit)
)

// SetWarningRate changes how many diagnostics per second are logged.
// Diagnostics are always returned to the caller regardless of the rate.
func SetWarningRate(perSecond int) {
	lgrMtx.Lock()
	lgr = log.Throttle(log.WithModule("record"), perSecond)
	lgrMtx.Unlock()
}

func logDiagnostic(source string, d Diagnostic) {
	lgrMtx.RLock()
	l := lgr
	lgrMtx.RUnlock()
	l.Warn(d.Message, "source", source, "record", d.Record, "line", d.Line, "code", d.Code)
}
