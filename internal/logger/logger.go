package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	colorRed     = 31
	colorGreen   = 32
	colorYellow  = 33
	colorMagenta = 35
	colorBold    = 1
)

func colorize(s interface{}, c int, noColor bool) string {
	if noColor {
		return fmt.Sprintf("%v", s)
	}

	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}

// New creates a logger based on the ENV environment variable.
func New(level zerolog.Level) zerolog.Logger {
	env := os.Getenv("ENV")

	if env == "production" || env == "prod" {
		return NewProduction(os.Stderr).Level(level)
	}

	return NewDevelopment(os.Stderr, false).Level(level)
}

// NewDevelopment creates a console logger with short colored levels.
func NewDevelopment(out io.Writer, noColor bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: "2006-01-02 15:04:05",
		FormatLevel: func(i interface{}) string {
			ll, ok := i.(string)
			if !ok || len(ll) < 3 {
				return strings.ToUpper(fmt.Sprintf("%-3s", i))[0:3]
			}

			switch ll {
			case "trace":
				return colorize("TRC", colorMagenta, noColor)
			case "debug":
				return colorize("DBG", colorYellow, noColor)
			case "info":
				return colorize("INF", colorGreen, noColor)
			case "warn":
				return colorize("WRN", colorRed, noColor)
			case "error", "fatal", "panic":
				return colorize(strings.ToUpper(ll)[0:3], colorRed, noColor)
			default:
				return colorize(strings.ToUpper(ll)[0:3], colorBold, noColor)
			}
		},
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// NewProduction creates a JSON logger with UNIX timestamps.
func NewProduction(out io.Writer) zerolog.Logger {
	return zerolog.New(out).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil || name == "" {
		return zerolog.InfoLevel
	}

	return level
}
