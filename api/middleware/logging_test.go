package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
)

func TestLoggingRecordsDownstreamStatus(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/unknown", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("downstream status lost: %d", rec.Code)
	}
	if !strings.Contains(buf.String(), `"status":404`) {
		t.Fatalf("request log missing status, got %s", buf.String())
	}
}

func TestLoggingDefaultsImplicitOK(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Write without an explicit WriteHeader.
		if _, err := w.Write([]byte("pong")); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/public/ping", nil))

	if !strings.Contains(buf.String(), `"status":200`) {
		t.Fatalf("implicit 200 not recorded, got %s", buf.String())
	}
}
