package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestInputValidation(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{name: "normal request", target: "/api/sentiment/today", wantStatus: http.StatusOK},
		{name: "path at limit", target: "/" + strings.Repeat("a", maxPathLength-1), wantStatus: http.StatusOK},
		{name: "path too long", target: "/" + strings.Repeat("a", maxPathLength), wantStatus: http.StatusRequestURITooLong, wantBody: "URI too long"},
		{name: "query too long", target: "/health?q=" + strings.Repeat("x", maxQueryLength), wantStatus: http.StatusRequestURITooLong, wantBody: "query string too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := InputValidation()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rr.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantBody != "" {
				if called {
					t.Error("next handler should not run")
				}
				if !strings.Contains(rr.Body.String(), tt.wantBody) {
					t.Errorf("body %q does not contain %q", rr.Body.String(), tt.wantBody)
				}
			}
		})
	}
}

func TestInputValidation_BodySizeLimit(t *testing.T) {
	var readErr error
	handler := InputValidation()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	body := strings.NewReader(strings.Repeat("x", maxBodyBytes+1))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/health", body))

	if readErr == nil {
		t.Error("expected an error reading an oversized body")
	}
}
