package shared

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLoggerJSON(t *testing.T) {
	var buffer bytes.Buffer
	logger, err := NewLogger(LogOptions{Level: "debug", Format: "json", Writer: &buffer})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.Debug().Str("account", "0.0.1").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buffer.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line: %v", err)
	}
	if entry["message"] != "hello" || entry["account"] != "0.0.1" {
		t.Fatalf("unexpected log entry: %+v", entry)
	}
}

func TestNewLoggerLevelFilters(t *testing.T) {
	var buffer bytes.Buffer
	logger, err := NewLogger(LogOptions{Level: "warn", Format: "json", Writer: &buffer})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Info().Msg("dropped")
	if buffer.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buffer.String())
	}
}

func TestNewLoggerInvalidOptions(t *testing.T) {
	if _, err := NewLogger(LogOptions{Level: "loud"}); err == nil {
		t.Fatal("expected error for invalid level")
	}
	if _, err := NewLogger(LogOptions{Format: "xml"}); err == nil {
		t.Fatal("expected error for invalid format")
	}
}
