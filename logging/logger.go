package logging

import (
	"io"
	"os"
	"sync"

	gologging "github.com/op/go-logging"
)

// Logger is the leveled logger handed to every renderer component.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

var (
	colorFormat = gologging.MustStringFormatter(
		`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
	)
	plainFormat = gologging.MustStringFormatter(
		`[%{time:15:04:05.000}] [%{module}] [%{level}] %{message}`,
	)
)

type DefaultLogger struct {
	mu      sync.Mutex
	debug   bool
	module  string
	log     *gologging.Logger
	backend gologging.LeveledBackend
}

// NewDefaultLogger creates a colored logger writing to stdout.
func NewDefaultLogger(module string, debug bool) *DefaultLogger {
	return newLogger(module, os.Stdout, colorFormat, debug)
}

// NewLogger creates a logger writing plain lines to sink.
func NewLogger(module string, sink io.Writer, debug bool) *DefaultLogger {
	return newLogger(module, sink, plainFormat, debug)
}

func newLogger(module string, sink io.Writer, format gologging.Formatter, debug bool) *DefaultLogger {
	if module == "" {
		module = "lumen"
	}
	backend := gologging.NewLogBackend(sink, "", 0)
	leveled := gologging.AddModuleLevel(gologging.NewBackendFormatter(backend, format))

	l := &DefaultLogger{
		module:  module,
		log:     gologging.MustGetLogger(module),
		backend: leveled,
	}
	l.log.SetBackend(leveled)
	l.SetDebug(debug)
	return l
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	if enabled {
		l.backend.SetLevel(gologging.DEBUG, l.module)
	} else {
		l.backend.SetLevel(gologging.INFO, l.module)
	}
	l.mu.Unlock()
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.log.Debugf(format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.log.Infof(format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.log.Warningf(format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.log.Errorf(format, args...) }

type nopLogger struct{}

func NewNopLogger() Logger { return &nopLogger{} }

func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}
