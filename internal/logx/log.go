package logx

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

var logger atomic.Pointer[log.Logger]

func init() {
	logger.Store(newLogger(os.Stdout, "piratwhist", log.InfoLevel))
}

func newLogger(w io.Writer, appName string, level log.Level) *log.Logger {
	l := log.New(w)
	l.SetPrefix(appName)
	l.SetReportTimestamp(true)
	l.SetTimeFormat(time.DateTime)
	l.SetReportCaller(true)
	l.SetCallerOffset(1)
	l.SetLevel(level)
	return l
}

// Init replaces the process logger. Unknown levels fall back to info.
func Init(appName string, logLevel string) {
	logger.Store(newLogger(os.Stdout, appName, ParseLevel(logLevel)))
}

// SetOutput redirects the current logger, mostly for tests.
func SetOutput(w io.Writer) {
	logger.Load().SetOutput(w)
}

func ParseLevel(logLevel string) log.Level {
	switch strings.ToLower(strings.TrimSpace(logLevel)) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func Fatal(format string, args ...any) {
	logger.Load().Fatalf(format, args...)
}

func Info(format string, args ...any) {
	logger.Load().Infof(format, args...)
}

func Warn(format string, args ...any) {
	logger.Load().Warnf(format, args...)
}

func Error(format string, args ...any) {
	logger.Load().Errorf(format, args...)
}

func Debug(format string, args ...any) {
	logger.Load().Debugf(format, args...)
}
