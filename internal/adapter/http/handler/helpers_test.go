package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iho/debtledger/internal/adapter/http/dto"
	"github.com/iho/debtledger/internal/adapter/http/middleware"
	"github.com/iho/debtledger/internal/domain"
)

// newRequest builds a request authenticated as userID with chi URL params.
func newRequest(method, target, body, userID string, params ...string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))

	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)

	if userID != "" {
		ctx = middleware.WithUser(ctx, &domain.User{ID: userID, Active: true})
	}
	return req.WithContext(ctx)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "validation",
			err:      domain.NewValidationError("name", "This field may not be blank."),
			wantCode: http.StatusBadRequest,
			wantBody: `{"name":["This field may not be blank."]}`,
		},
		{name: "invalid page", err: domain.ErrInvalidPage, wantCode: http.StatusNotFound, wantBody: `{"detail":"Invalid page."}`},
		{name: "debtor not found", err: domain.ErrDebtorNotFound, wantCode: http.StatusNotFound, wantBody: `{"detail":"Not found."}`},
		{
			name:     "transaction not found wrapped",
			err:      errors.Join(errors.New("lookup"), domain.ErrTransactionNotFound),
			wantCode: http.StatusNotFound,
			wantBody: `{"detail":"Not found."}`,
		},
		{name: "forbidden", err: domain.ErrForbidden, wantCode: http.StatusForbidden, wantBody: `{"detail":"You are not the owner of the object"}`},
		{name: "no currency", err: domain.ErrNoActiveCurrency, wantCode: http.StatusBadRequest, wantBody: `["active currency not configured for user"]`},
		{name: "no transactions", err: domain.ErrNoTransactions, wantCode: http.StatusBadRequest, wantBody: `["The debtor has no transactions"]`},
		{name: "invalid activation", err: domain.ErrInvalidActivation, wantCode: http.StatusBadRequest, wantBody: `["Activation link is invalid!"]`},
		{name: "unsupported format", err: domain.ErrUnsupportedFormat, wantCode: http.StatusUnsupportedMediaType},
		{name: "bad credentials", err: domain.ErrInvalidCredentials, wantCode: http.StatusUnauthorized},
		{name: "unexpected", err: errors.New("boom"), wantCode: http.StatusInternalServerError, wantBody: `{"detail":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantBody != "" && strings.TrimSpace(rec.Body.String()) != tt.wantBody {
				t.Fatalf("expected body %s, got %s", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestDecodeJSON_DateFormat(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sum": 5, "date": "05.01.2024"}`))

	var body dto.TransactionRequest
	if decodeJSON(rec, req, &body) {
		t.Fatal("expected decode failure")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Date has wrong format") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestDecodeJSON_EmptyBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	var body map[string]any
	if decodeJSON(rec, req, &body) {
		t.Fatal("expected decode failure")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPageRequest(t *testing.T) {
	tests := []struct {
		query    string
		wantPage int
		wantSize int
	}{
		{query: "", wantPage: 1},
		{query: "?page=3&size=5", wantPage: 3, wantSize: 5},
		{query: "?page=abc", wantPage: 0},
		{query: "?size=x", wantPage: 1},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := pageRequest(httptest.NewRequest(http.MethodGet, "/api/v1/debtor/"+tt.query, nil))
			if req.Page != tt.wantPage || req.Size != tt.wantSize {
				t.Fatalf("expected page %d size %d, got %+v", tt.wantPage, tt.wantSize, req)
			}
		})
	}
}

func TestPageLinks(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://testserver/api/v1/debtor/?page=2&size=1", nil)

	next, previous := pageLinks(req, 2, true, true)
	if next == nil || *next != "http://testserver/api/v1/debtor/?page=3&size=1" {
		t.Fatalf("unexpected next link %v", next)
	}
	if previous == nil || *previous != "http://testserver/api/v1/debtor/?size=1" {
		t.Fatalf("unexpected previous link %v", previous)
	}

	next, previous = pageLinks(req, 1, false, false)
	if next != nil || previous != nil {
		t.Fatal("expected no links")
	}
}

func TestPageLinks_ForwardedProto(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/api/v1/debtor/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")

	next, _ := pageLinks(req, 1, true, false)
	if next == nil || *next != "https://api.example.com/api/v1/debtor/?page=2" {
		t.Fatalf("unexpected next link %v", next)
	}
}

func TestPathID(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-1", ""} {
		rec := httptest.NewRecorder()
		if _, ok := pathID(rec, newRequest(http.MethodGet, "/", "", "u1", "id", raw), "id"); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for %q, got %d", raw, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	id, ok := pathID(rec, newRequest(http.MethodGet, "/", "", "u1", "id", "42"), "id")
	if !ok || id != 42 {
		t.Fatalf("expected 42, got %d", id)
	}
}
