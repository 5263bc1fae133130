// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// LogLevel represents the severity of a log entry
type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

var levelRank = map[LogLevel]int{
	DEBUG: 0,
	INFO:  1,
	WARN:  2,
	ERROR: 3,
}

// Logger writes structured JSON entries for one component
type Logger struct {
	Component  string
	InstanceID string
	Container  string

	minLevel LogLevel
	out      io.Writer
	mu       sync.Mutex
}

// LogEntry represents one structured log line
type LogEntry struct {
	Timestamp  string                 `json:"timestamp"`
	Level      LogLevel               `json:"level"`
	Component  string                 `json:"component"`
	InstanceID string                 `json:"instance_id"`
	Container  string                 `json:"container"`
	Namespace  string                 `json:"namespace,omitempty"`
	RequestID  string                 `json:"request_id,omitempty"`
	Message    string                 `json:"message"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// New creates a new Logger for the specified component writing to stdout
func New(component string) *Logger {
	return NewWithWriter(component, os.Stdout)
}

// NewWithWriter creates a Logger that writes one JSON entry per line to w.
// Tests pass a buffer here and decode the emitted entries.
func NewWithWriter(component string, w io.Writer) *Logger {
	// Get instance ID from environment (set during deployment)
	instanceID := os.Getenv("INSTANCE_ID")
	if instanceID == "" {
		instanceID = "unknown"
	}

	container, err := os.Hostname()
	if err != nil {
		container = "unknown"
	}

	minLevel := LogLevel(os.Getenv("LOG_LEVEL"))
	if _, ok := levelRank[minLevel]; !ok {
		minLevel = DEBUG
	}

	return &Logger{
		Component:  component,
		InstanceID: instanceID,
		Container:  container,
		minLevel:   minLevel,
		out:        w,
	}
}

// Discard returns a Logger that drops every entry
func Discard() *Logger {
	return NewWithWriter("discard", io.Discard)
}

// SetLevel sets the minimum level that is written
func (l *Logger) SetLevel(level LogLevel) {
	if _, ok := levelRank[level]; !ok {
		return
	}
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
}

// Log creates a structured log entry and writes it
func (l *Logger) Log(level LogLevel, namespace, requestID, message string, fields map[string]interface{}) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if levelRank[level] < levelRank[l.minLevel] {
		return
	}

	entry := LogEntry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		Level:      level,
		Component:  l.Component,
		InstanceID: l.InstanceID,
		Container:  l.Container,
		Namespace:  namespace,
		RequestID:  requestID,
		Message:    message,
		Fields:     fields,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		// Fallback to plain text if JSON marshaling fails
		log.Printf("ERROR: Failed to marshal log entry: %v", err)
		return
	}

	jsonBytes = append(jsonBytes, '\n')
	if _, err := l.out.Write(jsonBytes); err != nil {
		log.Printf("ERROR: Failed to write log entry: %v", err)
	}
}

// Info logs an informational message
func (l *Logger) Info(namespace, requestID, message string, fields map[string]interface{}) {
	l.Log(INFO, namespace, requestID, message, fields)
}

// Error logs an error message
func (l *Logger) Error(namespace, requestID, message string, fields map[string]interface{}) {
	l.Log(ERROR, namespace, requestID, message, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(namespace, requestID, message string, fields map[string]interface{}) {
	l.Log(WARN, namespace, requestID, message, fields)
}

// Debug logs a debug message
func (l *Logger) Debug(namespace, requestID, message string, fields map[string]interface{}) {
	l.Log(DEBUG, namespace, requestID, message, fields)
}

// InfoWithDuration logs an info message with duration field
func (l *Logger) InfoWithDuration(namespace, requestID, message string, durationMS float64, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["duration_ms"] = durationMS
	l.Info(namespace, requestID, message, fields)
}

// ErrorWithCause logs an error message with the error text attached as a field
func (l *Logger) ErrorWithCause(namespace, requestID, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Error(namespace, requestID, message, fields)
}

// WarnWithCause logs a warning with the error text attached as a field
func (l *Logger) WarnWithCause(namespace, requestID, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Warn(namespace, requestID, message, fields)
}
