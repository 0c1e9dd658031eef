package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestWithContextCopiesRequestAndRunIDs(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, RunIDKey, "run-9")
	log.WithContext(ctx).Info("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if line["request_id"] != "req-1" || line["run_id"] != "run-9" {
		t.Fatalf("expected context ids on the line, got %v", line)
	}
	if ts, _ := line["time"].(string); !strings.HasSuffix(ts, "Z") {
		t.Fatalf("expected UTC time, got %q", ts)
	}
}

func TestWithContextWithoutValuesReturnsSameLogger(t *testing.T) {
	log := Discard()
	if log.WithContext(context.Background()) != log {
		t.Fatal("expected the same logger when the context carries nothing")
	}
}
