package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestLoggingMiddlewareAttachesLogger(t *testing.T) {
	var buf bytes.Buffer
	mw := NewLoggingMiddleware(zerolog.New(&buf))

	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Ctx(r.Context()).Warn().Msg("inside handler")
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/debtor/", nil))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected two log lines, got %q", buf.String())
	}

	var inner, access map[string]any
	if err := json.Unmarshal(lines[0], &inner); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal(lines[1], &access); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if inner["message"] != "inside handler" {
		t.Fatalf("expected handler log through context logger, got %v", inner)
	}
	if access["status"] != float64(http.StatusCreated) || access["path"] != "/api/v1/debtor/" || access["level"] != "info" {
		t.Fatalf("unexpected access log: %v", access)
	}
}

func TestRecoveryReturnsJSON(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if rr.Body.String() != "{\"detail\":\"internal server error\"}\n" {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
}

func TestLoggingMiddlewareLevelsByStatus(t *testing.T) {
	for status, level := range map[int]string{
		http.StatusNotFound:            "warn",
		http.StatusInternalServerError: "error",
	} {
		var buf bytes.Buffer
		handler := NewLoggingMiddleware(zerolog.New(&buf)).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte("{}"))
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/debtor/9/", nil))

		var access map[string]any
		if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &access); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if access["level"] != level || access["bytes"] != float64(2) {
			t.Fatalf("status %d: unexpected access log %v", status, access)
		}
	}
}

func TestRecoveryAfterResponseStarted(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("Debtor,Alice\n"))
		panic("writer failed")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/debtor/1/report", nil))

	if rr.Code != http.StatusOK || rr.Body.String() != "Debtor,Alice\n" {
		t.Fatalf("expected the partial body to be left alone, got %d %q", rr.Code, rr.Body.String())
	}
}
