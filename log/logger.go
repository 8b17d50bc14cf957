package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = []string{"trace", "debug", "info", "warn", "error", "fatal"}

func NewLevel(l string) (Level, error) {
	l = strings.ToLower(strings.TrimSpace(l))
	if l == "warning" {
		return LevelWarn, nil
	}
	for i, name := range levelNames {
		if name == l {
			return Level(i), nil
		}
	}
	return LevelTrace, errors.Errorf("invalid log level %q", l)
}

func (l Level) String() string {
	if l < LevelTrace || l > LevelFatal {
		panic("invalid level")
	}
	return levelNames[l]
}

func (l Level) logrus() logrus.Level {
	switch l {
	case LevelTrace:
		return logrus.TraceLevel
	case LevelDebug:
		return logrus.DebugLevel
	case LevelInfo:
		return logrus.InfoLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.PanicLevel
	}
}

var (
	mtx       sync.RWMutex
	currLevel = LevelInfo
	backend   = logrus.New()
)

var rootLogger = &logrusLogger{
	backend: backend,
}

type Logger interface {
	Trace(string, ...interface{})
	Debug(string, ...interface{})
	Info(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Fatal(string, ...interface{})
	Sub(...interface{}) Logger
}

func SetLevel(level Level) {
	mtx.Lock()
	currLevel = level
	mtx.Unlock()
	backend.SetLevel(level.logrus())
}

func CurrentLevel() Level {
	mtx.RLock()
	defer mtx.RUnlock()
	return currLevel
}

func SetOutput(w io.Writer) {
	backend.SetOutput(w)
}

// SetFormat selects the output format: "text" or "json".
func SetFormat(format string) error {
	switch strings.ToLower(format) {
	case "", "text":
		backend.SetFormatter(&logrus.TextFormatter{})
	case "json":
		backend.SetFormatter(&logrus.JSONFormatter{})
	default:
		return errors.Errorf("invalid log format %q", format)
	}
	return nil
}

func WithModule(name string) Logger {
	return rootLogger.Sub("module", name)
}

func init() {
	backend.SetOutput(os.Stderr)
	// trace everything when running tests
	if strings.HasSuffix(os.Args[0], ".test") {
		SetLevel(LevelTrace)
	}
}
