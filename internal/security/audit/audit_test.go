package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLogUserChangeIncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	al := NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	ctx := WithRequestID(context.Background(), "req-42")
	al.LogUserChange(ctx, 1, "delete_user", 7, "rejected", "self deletion")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("audit record is not json: %v", err)
	}
	if rec["request_id"] != "req-42" || rec["resource_id"] != "7" || rec["status"] != "rejected" {
		t.Fatalf("unexpected audit record: %v", rec)
	}
	if rec["component"] != "audit" {
		t.Fatalf("expected component attribute, got %v", rec["component"])
	}
}

func TestRequestIDMissing(t *testing.T) {
	if got := RequestID(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
}
