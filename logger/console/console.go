// SPDX-License-Identifier: MIT

// Package console is a logger backend writing to a terminal via charmbracelet/log.
package console

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger implements logger.Instance.
type Logger struct {
	logger *log.Logger
}

// Params configures a console Logger.
type Params struct {
	Debug bool
	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// New creates a console logger.
func New(params Params) *Logger {
	level := log.InfoLevel
	if params.Debug {
		level = log.DebugLevel
	}
	w := params.Writer
	if w == nil {
		w = os.Stderr
	}

	return &Logger{logger: log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})}
}

// Debug writes a message at DEBUG level.
func (c *Logger) Debug(message string, keyvals ...any) { c.logger.Debug(message, keyvals...) }

// Info writes a message at INFO level.
func (c *Logger) Info(message string, keyvals ...any) { c.logger.Info(message, keyvals...) }

// Warn writes a message at WARN level.
func (c *Logger) Warn(message string, keyvals ...any) { c.logger.Warn(message, keyvals...) }

// Error writes a message at ERROR level.
func (c *Logger) Error(message string, keyvals ...any) { c.logger.Error(message, keyvals...) }
