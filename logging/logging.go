// Package logging provides structured real-time console output.
// Log lines are for monitoring a running Willow process; they are not a
// durable record of anything.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Logger provides structured logging to stdout.
type Logger struct {
	mu        sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
	sessionID string
}

// New creates a new Logger writing to stdout at Info level.
func New() *Logger {
	return &Logger{
		output:   os.Stdout,
		minLevel: LevelInfo,
	}
}

// WithComponent returns a new logger with the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
		sessionID: l.sessionID,
	}
}

// WithSessionID returns a new logger tagged with the given session ID.
func (l *Logger) WithSessionID(id string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: l.component,
		sessionID: id,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// SetOutput sets the output writer (default: stdout).
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs in key order.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return " " + strings.Join(parts, " ")
}

// log writes a log entry: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var f map[string]interface{}
	if len(fields) > 0 && fields[0] != nil {
		f = fields[0]
	}
	if l.sessionID != "" {
		merged := make(map[string]interface{}, len(f)+1)
		for k, v := range f {
			merged[k] = v
		}
		merged["session"] = l.sessionID
		f = merged
	}
	fieldStr := formatFields(f)

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// --- Task lifecycle logging ---
// Called by the task worker loop around body execution.

// TaskQueued logs a task entering the pending queue.
func (l *Logger) TaskQueued(id int64, description string) {
	l.Info("task_queued", map[string]interface{}{
		"task": id,
		"desc": description,
	})
}

// TaskStart logs a worker picking up a task.
func (l *Logger) TaskStart(id int64, description string) {
	l.Info("task_start", map[string]interface{}{
		"task": id,
		"desc": description,
	})
}

// TaskComplete logs successful task completion, including the result.
func (l *Logger) TaskComplete(id int64, duration time.Duration, result string) {
	l.Info("task_complete", map[string]interface{}{
		"task":     id,
		"duration": duration.String(),
		"result":   result,
	})
}

// TaskFailed logs terminal task failure.
func (l *Logger) TaskFailed(id int64, duration time.Duration, err error) {
	l.Error("task_failed", map[string]interface{}{
		"task":     id,
		"duration": duration.String(),
		"error":    err.Error(),
	})
}

// --- Provider call logging ---

// ProviderCall logs an outbound LLM call.
func (l *Logger) ProviderCall(provider, model string) {
	l.Debug("provider_call", map[string]interface{}{
		"provider": provider,
		"model":    model,
	})
}

// ProviderResult logs the outcome of an LLM call.
func (l *Logger) ProviderResult(provider string, duration time.Duration, err error) {
	fields := map[string]interface{}{
		"provider": provider,
		"duration": duration.String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		l.Error("provider_error", fields)
		return
	}
	l.Debug("provider_result", fields)
}
