package core

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
	out io.Closer
}

var singleton *logger

func getLogger() *logger {
	once.Do(
		func() {
			l := log.NewWithOptions(os.Stderr, log.Options{
				ReportCaller:    true,
				ReportTimestamp: true,
				TimeFormat:      time.RFC3339,
				Prefix:          "Halfblock ▀ ",
			})
			l.SetLevel(log.InfoLevel)
			singleton = &logger{Logger: l}
		})
	return singleton
}

// SetLogLevel accepts debug, info, warn, error or fatal.
func SetLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, ErrInvalidConfig)
	}
	getLogger().SetLevel(lvl)
	return nil
}

// SetLogOutput redirects the logger. An empty path restores stderr. Frames
// are drawn on stdout, so a file keeps diagnostics from tearing the picture.
func SetLogOutput(path string) error {
	l := getLogger()
	var w io.Writer = os.Stderr
	var closer io.Closer
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		w, closer = f, f
	}
	l.SetOutput(w)
	if l.out != nil {
		l.out.Close()
	}
	l.out = closer
	return nil
}

// SetLogWriter points the logger at w, mostly for tests.
func SetLogWriter(w io.Writer) {
	l := getLogger()
	l.SetOutput(w)
	if l.out != nil {
		l.out.Close()
		l.out = nil
	}
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Helper()
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Helper()
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Helper()
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Helper()
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Helper()
	getLogger().Fatalf(msg, args...)
}
