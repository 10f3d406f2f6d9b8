package observability

import (
	"context"
	"testing"
)

type stubSpan struct{}

func (stubSpan) End()                          {}
func (stubSpan) SetAttributes(...Attribute)    {}
func (stubSpan) SetStatus(StatusCode, string)  {}
func (stubSpan) RecordError(error)             {}
func (stubSpan) AddEvent(string, ...Attribute) {}

func TestSpanRoundTripsThroughContext(t *testing.T) {
	span := stubSpan{}
	ctx := ContextWithSpan(context.Background(), span)
	if got := SpanFromContext(ctx); got != span {
		t.Errorf("Expected the stored span back, got %v", got)
	}
}

func TestSpanFromEmptyContextIsNil(t *testing.T) {
	if got := SpanFromContext(context.Background()); got != nil {
		t.Errorf("Expected nil, got %v", got)
	}
}

func TestSpanFromNilContextIsNil(t *testing.T) {
	if got := SpanFromContext(nil); got != nil {
		t.Errorf("Expected nil, got %v", got)
	}
}

func TestObserverFromEmptyContextIsNil(t *testing.T) {
	if got := ObserverFromContext(context.Background()); got != nil {
		t.Errorf("Expected nil, got %v", got)
	}
}

func TestErrorAttributeCarriesMessage(t *testing.T) {
	attr := Error(context.Canceled)
	if attr.Key != "error" || attr.Value != context.Canceled.Error() {
		t.Errorf("Unexpected attribute %+v", attr)
	}
}

func TestNilErrorAttributeIsEmpty(t *testing.T) {
	attr := Error(nil)
	if attr.Value != "" {
		t.Errorf("Expected empty value, got %v", attr.Value)
	}
}
