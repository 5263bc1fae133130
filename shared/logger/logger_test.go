// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package logger

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

// TestNew tests logger initialization
func TestNew(t *testing.T) {
	tests := []struct {
		name           string
		component      string
		instanceID     string
		expectedComp   string
		expectedInstID string
	}{
		{
			name:           "with instance ID set",
			component:      "registry",
			instanceID:     "instance-123",
			expectedComp:   "registry",
			expectedInstID: "instance-123",
		},
		{
			name:           "without instance ID",
			component:      "redis-loader",
			instanceID:     "",
			expectedComp:   "redis-loader",
			expectedInstID: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.instanceID != "" {
				t.Setenv("INSTANCE_ID", tt.instanceID)
			} else {
				t.Setenv("INSTANCE_ID", "")
				if err := os.Unsetenv("INSTANCE_ID"); err != nil {
					t.Fatalf("Failed to unset INSTANCE_ID: %v", err)
				}
			}

			logger := New(tt.component)

			if logger.Component != tt.expectedComp {
				t.Errorf("Expected component %s, got %s", tt.expectedComp, logger.Component)
			}
			if logger.InstanceID != tt.expectedInstID {
				t.Errorf("Expected instance ID %s, got %s", tt.expectedInstID, logger.InstanceID)
			}
			if logger.Container == "" {
				t.Error("Expected container to be set from hostname")
			}
		})
	}
}

// TestLogLevels tests all log level methods
func TestLogLevels(t *testing.T) {
	tests := []struct {
		name      string
		logFunc   func(*Logger, string, string, string, map[string]interface{})
		level     LogLevel
		message   string
		namespace string
		requestID string
		fields    map[string]interface{}
	}{
		{
			name:      "Info log",
			logFunc:   (*Logger).Info,
			level:     INFO,
			message:   "Loaded modules",
			namespace: "smart-modules",
			requestID: "req-456",
			fields:    map[string]interface{}{"count": 3},
		},
		{
			name:      "Error log",
			logFunc:   (*Logger).Error,
			level:     ERROR,
			message:   "Failed to load module",
			namespace: "billing",
			requestID: "",
			fields:    map[string]interface{}{"locator": "/tmp/Charge.module.go"},
		},
		{
			name:      "Warn log",
			logFunc:   (*Logger).Warn,
			level:     WARN,
			message:   "Cache write-through failed",
			namespace: "smart-modules",
			fields:    nil,
		},
		{
			name:      "Debug log",
			logFunc:   (*Logger).Debug,
			level:     DEBUG,
			message:   "Scanning directory",
			namespace: "inventory",
			requestID: "req-uvw",
			fields:    map[string]interface{}{"debug_info": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWithWriter("test-component", &buf)
			logger.SetLevel(DEBUG)
			tt.logFunc(logger, tt.namespace, tt.requestID, tt.message, tt.fields)

			entries, err := ReadEntries(&buf)
			if err != nil {
				t.Fatalf("Failed to parse JSON log: %v", err)
			}
			if len(entries) != 1 {
				t.Fatalf("Expected 1 entry, got %d", len(entries))
			}
			entry := entries[0]

			if entry.Level != tt.level {
				t.Errorf("Expected level %s, got %s", tt.level, entry.Level)
			}
			if entry.Message != tt.message {
				t.Errorf("Expected message '%s', got '%s'", tt.message, entry.Message)
			}
			if entry.Namespace != tt.namespace {
				t.Errorf("Expected namespace '%s', got '%s'", tt.namespace, entry.Namespace)
			}
			if entry.RequestID != tt.requestID {
				t.Errorf("Expected request ID '%s', got '%s'", tt.requestID, entry.RequestID)
			}
			if entry.Component != "test-component" {
				t.Errorf("Expected component 'test-component', got '%s'", entry.Component)
			}
			if _, err := time.Parse(time.RFC3339Nano, entry.Timestamp); err != nil {
				t.Errorf("Invalid timestamp format: %s", entry.Timestamp)
			}

			for key, expectedValue := range tt.fields {
				actualValue, ok := entry.Fields[key]
				if !ok {
					t.Errorf("Expected field '%s' not found", key)
					continue
				}
				// JSON unmarshals numbers as float64
				if expected, isInt := expectedValue.(int); isInt {
					if actual, _ := actualValue.(float64); int(actual) != expected {
						t.Errorf("Field '%s': expected %v, got %v", key, expectedValue, actualValue)
					}
				} else if actualValue != expectedValue {
					t.Errorf("Field '%s': expected %v, got %v", key, expectedValue, actualValue)
				}
			}
		})
	}
}

// TestInfoWithDuration tests the InfoWithDuration helper method
func TestInfoWithDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("test-component", &buf)
	logger.InfoWithDuration("smart-modules", "", "Load completed", 123.45, map[string]interface{}{
		"source": "filesystem",
	})

	entries, err := ReadEntries(&buf)
	if err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}

	if got := entries[0].Fields["duration_ms"]; got != 123.45 {
		t.Errorf("Expected duration_ms 123.45, got %v", got)
	}
	if got := entries[0].Fields["source"]; got != "filesystem" {
		t.Errorf("Expected source field to be preserved, got %v", got)
	}
}

// TestErrorWithCause tests that the cause is attached as a field
func TestErrorWithCause(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("test-component", &buf)
	logger.ErrorWithCause("smart-modules", "", "Failed to load module", errors.New("symbol not found"), nil)
	logger.WarnWithCause("smart-modules", "", "Cache read failed", nil, nil)

	entries, err := ReadEntries(&buf)
	if err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if got := entries[0].Fields["error"]; got != "symbol not found" {
		t.Errorf("Expected error field, got %v", got)
	}
	if _, ok := entries[1].Fields["error"]; ok {
		t.Error("Expected no error field for nil cause")
	}
}

// TestSetLevel tests that entries below the minimum level are dropped
func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("test-component", &buf)
	logger.SetLevel(WARN)
	logger.SetLevel("NOT-A-LEVEL") // ignored

	logger.Debug("", "", "dropped", nil)
	logger.Info("", "", "dropped", nil)
	logger.Warn("", "", "kept", nil)
	logger.Error("", "", "kept", nil)

	entries, err := ReadEntries(&buf)
	if err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if got := Messages(entries, WARN); len(got) != 1 || got[0] != "kept" {
		t.Errorf("Unexpected WARN messages: %v", got)
	}
}

// TestNilLogger tests that a nil logger is a no-op
func TestNilLogger(t *testing.T) {
	var logger *Logger
	logger.Info("smart-modules", "", "ignored", nil)
}

// TestConcurrentLogging tests that concurrent writers never interleave lines
func TestConcurrentLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("test-component", &buf)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("smart-modules", "", "concurrent", map[string]interface{}{"payload": strings.Repeat("x", 128)})
		}()
	}
	wg.Wait()

	entries, err := ReadEntries(&buf)
	if err != nil {
		t.Fatalf("Interleaved output could not be parsed: %v", err)
	}
	if len(entries) != 20 {
		t.Errorf("Expected 20 entries, got %d", len(entries))
	}
}

// TestReadEntries_Invalid tests decoding errors
func TestReadEntries_Invalid(t *testing.T) {
	if _, err := ReadEntries(strings.NewReader("not json\n")); err == nil {
		t.Error("Expected error for invalid JSON line")
	}
	entries, err := ReadEntries(strings.NewReader("\n\n"))
	if err != nil || len(entries) != 0 {
		t.Errorf("Expected no entries and no error, got %v, %v", entries, err)
	}
}
