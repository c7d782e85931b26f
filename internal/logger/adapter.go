package logger

import (
	"github.com/rs/zerolog"
)

// Adapter exposes a zerolog.Logger through the quoter.Logger interface.
type Adapter struct {
	logger zerolog.Logger
}

// NewAdapter wraps a zerolog logger.
func NewAdapter(logger zerolog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// Debug logs at debug level.
func (a *Adapter) Debug(msg string, fields map[string]interface{}) {
	a.logger.Debug().Fields(fields).Msg(msg)
}

// Info logs at info level.
func (a *Adapter) Info(msg string, fields map[string]interface{}) {
	a.logger.Info().Fields(fields).Msg(msg)
}

// Warn logs at warn level.
func (a *Adapter) Warn(msg string, fields map[string]interface{}) {
	a.logger.Warn().Fields(fields).Msg(msg)
}

// Error logs at error level.
func (a *Adapter) Error(msg string, fields map[string]interface{}) {
	a.logger.Error().Fields(fields).Msg(msg)
}

// Nop discards everything.
type Nop struct{}

// Debug discards the entry.
func (Nop) Debug(string, map[string]interface{}) {}

// Info discards the entry.
func (Nop) Info(string, map[string]interface{}) {}

// Warn discards the entry.
func (Nop) Warn(string, map[string]interface{}) {}

// Error discards the entry.
func (Nop) Error(string, map[string]interface{}) {}
