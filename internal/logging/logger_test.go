package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestWithQueryTagsEndpoint(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	defer slog.SetDefault(previous)

	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))

	WithQuery("agents").Error("query failed", "error", "boom")

	out := buf.String()
	if !strings.Contains(out, "endpoint=agents") {
		t.Errorf("Expected endpoint attribute in output, got %q", out)
	}
	if !strings.Contains(out, "query failed") {
		t.Errorf("Expected message in output, got %q", out)
	}
}
