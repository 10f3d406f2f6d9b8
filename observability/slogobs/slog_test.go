package slogobs

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/verdantlabs/googleai/observability"
)

func debugObserver() (*Observer, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(WithOutput(&buf), WithLevel(slog.LevelDebug)), &buf
}

func TestSpanLogsStartAndEnd(t *testing.T) {
	obs, buf := debugObserver()
	_, span := obs.StartSpan(context.Background(), "generate")
	span.End()

	out := buf.String()
	if !strings.Contains(out, "span.start") {
		t.Errorf("Expected a span.start event, got %s", out)
	}
	if !strings.Contains(out, "span.end") {
		t.Errorf("Expected a span.end event, got %s", out)
	}
	if !strings.Contains(out, "duration=") {
		t.Errorf("Expected a duration on span end, got %s", out)
	}
}

func TestStartSpanAttachesSpanToContext(t *testing.T) {
	obs, _ := debugObserver()
	ctx, span := obs.StartSpan(context.Background(), "generate")
	if observability.SpanFromContext(ctx) != span {
		t.Error("Expected the span to be reachable from the returned context")
	}
}

func TestSpanErrorStatusIsLogged(t *testing.T) {
	obs, buf := debugObserver()
	_, span := obs.StartSpan(context.Background(), "generate")
	span.SetStatus(observability.StatusError, "boom")
	span.End()
	if !strings.Contains(buf.String(), "status=error") {
		t.Errorf("Expected error status on span end, got %s", buf.String())
	}
}

func TestCounterAccumulates(t *testing.T) {
	obs, _ := debugObserver()
	c := obs.Counter("requests")
	c.Add(context.Background(), 2)
	c.Add(context.Background(), 3)

	again := obs.Counter("requests").(*counter)
	if got := again.Total(); got != 5 {
		t.Errorf("Expected total 5, got %d", got)
	}
}

func TestCountersAreIndependentPerName(t *testing.T) {
	obs, _ := debugObserver()
	obs.Counter("a").Add(context.Background(), 1)
	if got := obs.Counter("b").(*counter).Total(); got != 0 {
		t.Errorf("Expected counter b untouched, got %d", got)
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	obs := New(WithOutput(&buf), WithLevel(slog.LevelWarn))
	obs.Info(context.Background(), "quiet")
	obs.Warn(context.Background(), "loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("Info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "loud") {
		t.Errorf("Warn should pass at warn level: %s", out)
	}
}

func TestLogAttributesAreEmitted(t *testing.T) {
	obs, buf := debugObserver()
	obs.Info(context.Background(), "request done",
		observability.String(observability.AttrModel, "gemini-2.0-flash"),
		observability.Int(observability.AttrHTTPStatusCode, 200),
	)
	out := buf.String()
	if !strings.Contains(out, "genai.model=gemini-2.0-flash") {
		t.Errorf("Expected the model attribute, got %s", out)
	}
}
