package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return exporter, tp
}

func findAttr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestMiddleware_CreatesSpan(t *testing.T) {
	exporter, tp := installRecorder(t)

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/sentiment/today", nil))
	_ = tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != "GET /api/sentiment/today" {
		t.Errorf("expected span name 'GET /api/sentiment/today', got %q", span.Name)
	}
	if v, ok := findAttr(span.Attributes, "http.status_code"); !ok || v.AsInt64() != 200 {
		t.Errorf("expected http.status_code=200, got %v (found=%v)", v.AsInt64(), ok)
	}
	if rr.Header().Get("X-Trace-Id") == "" {
		t.Error("expected X-Trace-Id header to be set")
	}
}

func TestMiddleware_MarksErrorSpansFor5xx(t *testing.T) {
	exporter, tp := installRecorder(t)

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/vectors/stats", nil))
	_ = tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if v, ok := findAttr(spans[0].Attributes, "error"); !ok || !v.AsBool() {
		t.Error("expected error=true attribute on 5xx span")
	}
}

func TestMiddleware_NoErrorAttributeFor4xx(t *testing.T) {
	exporter, tp := installRecorder(t)

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sentiment/top?label=bogus", nil))
	_ = tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if _, ok := findAttr(spans[0].Attributes, "error"); ok {
		t.Error("did not expect error attribute on 4xx span")
	}
}

func TestStartAndEndSpan(t *testing.T) {
	exporter, tp := installRecorder(t)

	_, span := StartSpan(context.Background(), "pipeline.fetch", attribute.Int("queries", 5))
	EndSpan(span, errors.New("news api down"))
	_ = tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status.Code)
	}
	if v, ok := findAttr(spans[0].Attributes, "queries"); !ok || v.AsInt64() != 5 {
		t.Errorf("expected queries=5 attribute")
	}
}

func TestResponseWriter_CapturesStatusCode(t *testing.T) {
	rr := httptest.NewRecorder()
	rw := newResponseWriter(rr)

	if rw.statusCode != http.StatusOK {
		t.Errorf("expected default 200, got %d", rw.statusCode)
	}
	rw.WriteHeader(http.StatusNotFound)
	if rw.statusCode != http.StatusNotFound || rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 captured and forwarded, got %d/%d", rw.statusCode, rr.Code)
	}
}
