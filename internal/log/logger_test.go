package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Component: component,
		Handler:   slog.NewTextHandler(buf, nil),
	})
}

func TestLoggerAttachesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentStorage)

	logger.Info("writing rows", FieldRows, 3)

	out := buf.String()
	if !strings.Contains(out, "component=storage") {
		t.Errorf("missing component field: %s", out)
	}
	if !strings.Contains(out, "rows=3") {
		t.Errorf("missing attribute: %s", out)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentApp).WithComponent(ComponentAMQP)

	if logger.Component() != ComponentAMQP {
		t.Errorf("component = %s", logger.Component())
	}
	logger.Warn("reconnecting")
	if !strings.Contains(buf.String(), "component=amqp") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestMiddlewarePutsLoggerInContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentHTTP)

	var got *Logger
	handler := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got != logger {
		t.Error("context logger is not the one installed")
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentHTTP)

	handler := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string {
		return "req_test"
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).InfoContext(r.Context(), "handled")
	})))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req_test") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestFromContextFallback(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil || logger.Component() != ComponentApp {
		t.Errorf("fallback logger = %+v", logger)
	}
}
