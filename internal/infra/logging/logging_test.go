package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWithAttachesContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := WithTraceID(context.Background(), "trace-1")
	ctx = WithPartnerID(ctx, "partner-1")
	ctx = WithJobID(ctx, "job-1")

	With(ctx, &base).Info().Msg("hello")

	out := buf.String()
	for _, want := range []string{`"trace_id":"trace-1"`, `"partner_id":"partner-1"`, `"job_id":"job-1"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}

func TestTraceDurationLogsStartAndFinish(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf).Level(zerolog.TraceLevel)

	TraceDuration(&base, "OrderUC.Create")()

	out := buf.String()
	if !strings.Contains(out, `"method":"OrderUC.Create"`) {
		t.Fatalf("expected method field, got %s", out)
	}
	if !strings.Contains(out, `"message":"start"`) || !strings.Contains(out, `"message":"finish"`) {
		t.Fatalf("expected start and finish entries, got %s", out)
	}
	if !strings.Contains(out, `"duration"`) {
		t.Fatalf("expected a duration field, got %s", out)
	}
}
