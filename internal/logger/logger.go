package logger

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level is a log verbosity accepted on the command line.
type Level string

const (
	Off   Level = "off"
	Error Level = "error"
	Warn  Level = "warn"
	Info  Level = "info"
	Debug Level = "debug"
	Trace Level = "trace"
)

// ParseLevel converts a command line value into a Level.
func ParseLevel(s string) (Level, error) {
	switch l := Level(s); l {
	case Off, Error, Warn, Info, Debug, Trace:
		return l, nil
	default:
		return "", fmt.Errorf("unknown log level %q", s)
	}
}

func (l Level) zerologLevel() zerolog.Level {
	switch l {
	case Off:
		return zerolog.Disabled
	case Error:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	case Debug:
		return zerolog.DebugLevel
	case Trace:
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

var once sync.Once

// Setup installs the process wide logger and returns it. Only the first call
// has any effect; later calls return the logger that is already installed.
//
// Release builds write JSON without colour, dev builds write compact coloured
// console output without timestamps. The standard library logger, which
// net/http falls back to, is routed through the same logger, so Off silences it
// too.
func Setup(level Level, dev bool) zerolog.Logger {
	once.Do(func() {
		if level == Off {
			zerolog.SetGlobalLevel(zerolog.Disabled)
			log.Logger = zerolog.Nop()
			stdlog.SetOutput(io.Discard)
			return
		}
		zerolog.SetGlobalLevel(level.zerologLevel())
		log.Logger = New(os.Stderr, level, dev)
		stdlog.SetFlags(0)
		stdlog.SetOutput(log.Logger)
	})

	return log.Logger
}

// New builds a logger writing to w. An Off level yields a logger that never
// writes anything.
func New(w io.Writer, level Level, dev bool) zerolog.Logger {
	if level == Off {
		return zerolog.Nop()
	}

	if dev {
		return zerolog.New(zerolog.ConsoleWriter{
			Out:          w,
			PartsExclude: []string{zerolog.TimestampFieldName},
		}).Level(level.zerologLevel()).With().Caller().Logger()
	}

	return zerolog.New(w).Level(level.zerologLevel()).With().Timestamp().Caller().Logger()
}
