package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

type debtorServiceStub struct {
	createFn func(ctx context.Context, userID, name string) (*domain.DebtorWithBalance, error)
	getFn    func(ctx context.Context, userID string, id int64) (*domain.DebtorWithBalance, error)
	renameFn func(ctx context.Context, userID string, id int64, name string) (*domain.DebtorWithBalance, error)
	deleteFn func(ctx context.Context, userID string, id int64) error
	listFn   func(ctx context.Context, userID string, req usecase.PageRequest) (*usecase.Page[*domain.DebtorWithBalance], error)
}

func (s *debtorServiceStub) CreateDebtor(ctx context.Context, userID, name string) (*domain.DebtorWithBalance, error) {
	return s.createFn(ctx, userID, name)
}

func (s *debtorServiceStub) GetDebtor(ctx context.Context, userID string, id int64) (*domain.DebtorWithBalance, error) {
	return s.getFn(ctx, userID, id)
}

func (s *debtorServiceStub) RenameDebtor(ctx context.Context, userID string, id int64, name string) (*domain.DebtorWithBalance, error) {
	return s.renameFn(ctx, userID, id, name)
}

func (s *debtorServiceStub) DeleteDebtor(ctx context.Context, userID string, id int64) error {
	return s.deleteFn(ctx, userID, id)
}

func (s *debtorServiceStub) ListDebtors(ctx context.Context, userID string, req usecase.PageRequest) (*usecase.Page[*domain.DebtorWithBalance], error) {
	return s.listFn(ctx, userID, req)
}

func debtorFixture(id int64, name string, balance string) *domain.DebtorWithBalance {
	d := &domain.DebtorWithBalance{Debtor: domain.Debtor{ID: id, Name: name, OwnerID: "u1", Active: true}}
	if balance != "" {
		d.Balance = decimal.NewNullDecimal(decimal.RequireFromString(balance))
	}
	return d
}

func TestDebtorHandler_List(t *testing.T) {
	var captured usecase.PageRequest
	handler := NewDebtorHandler(&debtorServiceStub{
		listFn: func(ctx context.Context, userID string, req usecase.PageRequest) (*usecase.Page[*domain.DebtorWithBalance], error) {
			if userID != "u1" {
				t.Fatalf("unexpected user %s", userID)
			}
			captured = req
			return &usecase.Page[*domain.DebtorWithBalance]{
				Items:        []*domain.DebtorWithBalance{debtorFixture(2, "Bob", "")},
				Count:        2,
				Number:       2,
				Size:         1,
				TotalBalance: decimal.NewNullDecimal(decimal.RequireFromString("150.5")),
				Currency:     "dollars",
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.List(rec, newRequest(http.MethodGet, "http://testserver/api/v1/debtor/?page=2&size=1", "", "u1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Page != 2 || captured.Size != 1 {
		t.Fatalf("unexpected page request %+v", captured)
	}

	body := decodeBody[map[string]any](t, rec)
	if body["next"] != nil {
		t.Fatalf("expected no next link, got %v", body["next"])
	}
	if body["previous"] != "http://testserver/api/v1/debtor/?size=1" {
		t.Fatalf("unexpected previous link %v", body["previous"])
	}
	if body["total_balance"] != 150.5 || body["currency"] != "dollars" || body["count"] != float64(2) {
		t.Fatalf("unexpected totals %v", body)
	}
	if _, ok := body["debtor_props"]; ok {
		t.Fatal("debtor list must not carry debtor_props")
	}

	results := body["results"].([]any)
	first := results[0].(map[string]any)
	if first["name"] != "Bob" || first["balance"] != nil {
		t.Fatalf("unexpected debtor %v", first)
	}
}

func TestDebtorHandler_ListInvalidPage(t *testing.T) {
	handler := NewDebtorHandler(&debtorServiceStub{
		listFn: func(ctx context.Context, userID string, req usecase.PageRequest) (*usecase.Page[*domain.DebtorWithBalance], error) {
			return nil, domain.ErrInvalidPage
		},
	})

	rec := httptest.NewRecorder()
	handler.List(rec, newRequest(http.MethodGet, "/api/v1/debtor/?page=9", "", "u1"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDebtorHandler_Create(t *testing.T) {
	var captured string
	handler := NewDebtorHandler(&debtorServiceStub{
		createFn: func(ctx context.Context, userID, name string) (*domain.DebtorWithBalance, error) {
			captured = name
			return debtorFixture(7, name, ""), nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Create(rec, newRequest(http.MethodPost, "/api/v1/debtor/", `{"name":"Alice"}`, "u1"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if captured != "Alice" {
		t.Fatalf("unexpected name %q", captured)
	}

	body := decodeBody[map[string]any](t, rec)
	if body["id"] != float64(7) || body["balance"] != nil {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestDebtorHandler_CreateMissingName(t *testing.T) {
	handler := NewDebtorHandler(&debtorServiceStub{})

	rec := httptest.NewRecorder()
	handler.Create(rec, newRequest(http.MethodPost, "/api/v1/debtor/", `{}`, "u1"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeBody[map[string][]string](t, rec)
	if body["name"][0] != "This field is required." {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestDebtorHandler_Unauthenticated(t *testing.T) {
	handler := NewDebtorHandler(&debtorServiceStub{})

	rec := httptest.NewRecorder()
	handler.List(rec, newRequest(http.MethodGet, "/api/v1/debtor/", "", ""))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestDebtorHandler_GetForbidden(t *testing.T) {
	handler := NewDebtorHandler(&debtorServiceStub{
		getFn: func(ctx context.Context, userID string, id int64) (*domain.DebtorWithBalance, error) {
			if id != 3 {
				t.Fatalf("unexpected id %d", id)
			}
			return nil, domain.ErrForbidden
		},
	})

	rec := httptest.NewRecorder()
	handler.Get(rec, newRequest(http.MethodGet, "/api/v1/debtor/3/", "", "u2", "debtor_id", "3"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestDebtorHandler_Update(t *testing.T) {
	renamed := false
	stub := &debtorServiceStub{
		renameFn: func(ctx context.Context, userID string, id int64, name string) (*domain.DebtorWithBalance, error) {
			renamed = true
			return debtorFixture(id, name, "10"), nil
		},
		getFn: func(ctx context.Context, userID string, id int64) (*domain.DebtorWithBalance, error) {
			return debtorFixture(id, "Alice", "10"), nil
		},
	}
	handler := NewDebtorHandler(stub)

	rec := httptest.NewRecorder()
	handler.Update(rec, newRequest(http.MethodPut, "/api/v1/debtor/1/", `{}`, "u1", "debtor_id", "1"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("PUT without name: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Patch(rec, newRequest(http.MethodPatch, "/api/v1/debtor/1/", `{}`, "u1", "debtor_id", "1"))
	if rec.Code != http.StatusOK || renamed {
		t.Fatalf("empty PATCH: expected 200 without rename, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Update(rec, newRequest(http.MethodPut, "/api/v1/debtor/1/", `{"name":"Alicia"}`, "u1", "debtor_id", "1"))
	if rec.Code != http.StatusOK || !renamed {
		t.Fatalf("PUT: expected 200 with rename, got %d", rec.Code)
	}
	body := decodeBody[map[string]any](t, rec)
	if body["name"] != "Alicia" || body["balance"] != float64(10) {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestDebtorHandler_Delete(t *testing.T) {
	handler := NewDebtorHandler(&debtorServiceStub{
		deleteFn: func(ctx context.Context, userID string, id int64) error {
			if id == 404 {
				return domain.ErrDebtorNotFound
			}
			return nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Delete(rec, newRequest(http.MethodDelete, "/api/v1/debtor/1/", "", "u1", "debtor_id", "1"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.Delete(rec, newRequest(http.MethodDelete, "/api/v1/debtor/404/", "", "u1", "debtor_id", "404"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
