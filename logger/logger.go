// SPDX-License-Identifier: MIT

// Package logger dispatches structured log calls to every configured backend.
// Until Init is called all calls are no-ops, so library code and tests stay quiet.
package logger

import "sync"

// Instance is one logging backend.
type Instance interface {
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
}

var (
	mu        sync.RWMutex
	instances []Instance
)

// Init replaces the process-wide backends.
func Init(backends ...Instance) {
	mu.Lock()
	defer mu.Unlock()

	instances = backends
}

func each(fn func(Instance)) {
	mu.RLock()
	defer mu.RUnlock()

	var in Instance
	for _, in = range instances {
		fn(in)
	}
}

// Debug writes a message at DEBUG level to all backends.
func Debug(message string, keyvals ...any) {
	each(func(in Instance) { in.Debug(message, keyvals...) })
}

// Info writes a message at INFO level to all backends.
func Info(message string, keyvals ...any) {
	each(func(in Instance) { in.Info(message, keyvals...) })
}

// Warn writes a message at WARN level to all backends.
func Warn(message string, keyvals ...any) {
	each(func(in Instance) { in.Warn(message, keyvals...) })
}

// Error writes a message at ERROR level to all backends.
func Error(message string, keyvals ...any) {
	each(func(in Instance) { in.Error(message, keyvals...) })
}
