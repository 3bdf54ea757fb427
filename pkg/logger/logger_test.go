package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-123")
	ctx = logg.WithAccountID(ctx, "acct-9")
	logg.Info(ctx, "settlement started")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not json: %v (%s)", err, buf.String())
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("missing request_id field: %v", entry)
	}
	if entry["account_id"] != "acct-9" {
		t.Fatalf("missing account_id field: %v", entry)
	}
	if entry["service"] != "test" {
		t.Fatalf("missing service field: %v", entry)
	}
}

func TestErrorIncludesStack(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	logg.Error(context.Background(), "boom", nil)

	if !strings.Contains(buf.String(), "stack") {
		t.Fatalf("expected stack field in error output: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != zerolog.DebugLevel {
		t.Fatal("expected debug level")
	}
	if ParseLevel("") != zerolog.InfoLevel {
		t.Fatal("expected info fallback for empty input")
	}
	if ParseLevel("nonsense") != zerolog.InfoLevel {
		t.Fatal("expected info fallback for unknown input")
	}
}
