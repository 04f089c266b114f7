package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWithRequestIDTagsLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)
	ctx := WithContext(context.Background(), &base)

	ctx = WithRequestID(ctx, "req-42")
	FromContext(ctx).Info().Msg("hello")

	if RequestID(ctx) != "req-42" {
		t.Fatalf("expected request id req-42, got %q", RequestID(ctx))
	}
	if !strings.Contains(buf.String(), `"request_id":"req-42"`) {
		t.Fatalf("expected request_id field in log line, got %s", buf.String())
	}
}

func TestRequestIDMissing(t *testing.T) {
	if got := RequestID(context.Background()); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
}
