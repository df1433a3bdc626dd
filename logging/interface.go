package logging

import (
	"bytes"
	"io"
	"log/slog"
	"sync"

	"github.com/runningwild/glop/glog"
)

type Logger interface {
	glog.Logger
}

type planeditLogger struct {
	glog.Logger
}

var _ Logger = (*planeditLogger)(nil)

var traceLogger *planeditLogger
var debugLogger *planeditLogger
var infoLogger *planeditLogger
var warnLogger *planeditLogger
var errorLogger *planeditLogger

func init() {
	traceLogger = &planeditLogger{
		Logger: glog.New(&glog.Opts{
			Level: glog.LevelTrace,
		}),
	}
	debugLogger = &planeditLogger{
		Logger: glog.New(&glog.Opts{
			Level: slog.LevelDebug,
		}),
	}
	infoLogger = &planeditLogger{
		Logger: glog.New(&glog.Opts{
			Level: slog.LevelInfo,
		}),
	}
	warnLogger = &planeditLogger{
		Logger: glog.New(&glog.Opts{
			Level: slog.LevelWarn,
		}),
	}
	errorLogger = &planeditLogger{
		Logger: glog.New(&glog.Opts{
			Level: slog.LevelError,
		}),
	}
}

func DefaultLogger() Logger {
	return InfoLogger()
}

func TraceLogger() Logger {
	return traceLogger
}

func DebugLogger() Logger {
	return debugLogger
}

func InfoLogger() Logger {
	return infoLogger
}

func WarnLogger() Logger {
	return warnLogger
}

func ErrorLogger() Logger {
	return errorLogger
}

func Trace(msg string, args ...interface{}) {
	TraceLogger().Trace(msg, args...)
}

func Debug(msg string, args ...interface{}) {
	DebugLogger().Debug(msg, args...)
}

func Info(msg string, args ...interface{}) {
	InfoLogger().Info(msg, args...)
}

func Warn(msg string, args ...interface{}) {
	WarnLogger().Warn(msg, args...)
}

func Error(msg string, args ...interface{}) {
	ErrorLogger().Error(msg, args...)
}

func eachLogger(fn func(l *planeditLogger)) {
	fn(traceLogger)
	fn(debugLogger)
	fn(infoLogger)
	fn(warnLogger)
	fn(errorLogger)
}

// Call this to redirect all logging output to the given io.Writer. A cleanup
// function that undoes the redirect is returned.
func Redirect(newOut io.Writer) func() {
	oldTrace, oldDebug := traceLogger, debugLogger
	oldInfo, oldWarn, oldError := infoLogger, warnLogger, errorLogger

	eachLogger(func(l *planeditLogger) {
		l.Logger = glog.WithRedirect(l.Logger, newOut)
	})

	return func() {
		traceLogger, debugLogger = oldTrace, oldDebug
		infoLogger, warnLogger, errorLogger = oldInfo, oldWarn, oldError
	}
}

// spyBuffer lets a reader tail everything written through it. Reads drain;
// an empty buffer reads as io.EOF so pollers can just try again next frame.
type spyBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *spyBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *spyBuffer) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Read(p)
}

// RedirectAndSpy sends all logging to 'sink' and also to the returned
// io.Reader so that something like an in-app console can tail the log
// stream. The cleanup function undoes the redirect.
func RedirectAndSpy(sink io.Writer) (func(), io.Reader) {
	spy := &spyBuffer{}
	restore := Redirect(io.MultiWriter(spy, sink))
	return restore, spy
}

// RedirectOutput is RedirectAndSpy for callers that never restore, e.g.
// one-shot capture in tests.
func RedirectOutput(sink io.Writer) io.Reader {
	_, spy := RedirectAndSpy(sink)
	return spy
}

// SetLoggingLevel changes the verbosity of every logger this package hands
// out. The returned function restores the previous verbosity.
func SetLoggingLevel(lvl slog.Level) func() {
	oldTrace, oldDebug := traceLogger.Logger, debugLogger.Logger
	oldInfo, oldWarn, oldError := infoLogger.Logger, warnLogger.Logger, errorLogger.Logger

	eachLogger(func(l *planeditLogger) {
		l.Logger = glog.Relevel(l.Logger, lvl)
	})

	return func() {
		traceLogger.Logger, debugLogger.Logger = oldTrace, oldDebug
		infoLogger.Logger, warnLogger.Logger, errorLogger.Logger = oldInfo, oldWarn, oldError
	}
}
