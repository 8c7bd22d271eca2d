package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	formatJSON    = "json"
	formatConsole = "console"
)

// Prm groups Logger's parameters.
type Prm struct {
	level    zapcore.Level
	encoding string
}

// SetLevelString sets the minimum logging level. Levels are case-insensitive:
// debug, info, warn, error, dpanic, panic, fatal.
//
// Returns an error if s is not a level name.
func (p *Prm) SetLevelString(s string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(s))
	if err != nil {
		return fmt.Errorf("invalid logger level %q: %w", s, err)
	}

	p.level = lvl

	return nil
}

// SetEncoding sets log records format: "json" or "console".
//
// Returns an error for other values.
func (p *Prm) SetEncoding(s string) error {
	switch f := strings.ToLower(s); f {
	case formatJSON, formatConsole:
		p.encoding = f
		return nil
	default:
		return fmt.Errorf("invalid logger encoding %q", s)
	}
}

// NewLogger constructs zap.Logger writing to stderr so command output
// stays clean. Zero Prm gives info level console logger.
func NewLogger(prm *Prm) (*zap.Logger, error) {
	if prm == nil {
		prm = new(Prm)
	}

	c := zap.NewProductionConfig()

	c.OutputPaths = []string{"stderr"}
	c.ErrorOutputPaths = []string{"stderr"}
	c.Sampling = nil

	c.Level = zap.NewAtomicLevelAt(prm.level)

	c.Encoding = formatConsole
	if prm.encoding != "" {
		c.Encoding = prm.encoding
	}

	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return c.Build(
		zap.AddStacktrace(zap.NewAtomicLevelAt(zap.FatalLevel)),
	)
}
