package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/iho/debtledger/internal/adapter/http/dto"
	"github.com/iho/debtledger/internal/adapter/http/middleware"
	"github.com/iho/debtledger/internal/domain"
	"github.com/iho/debtledger/internal/usecase"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeDetail writes {"detail": message}.
func writeDetail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.DetailResponse{Detail: message})
}

// writeMessages writes a bare list of messages.
func writeMessages(w http.ResponseWriter, status int, messages ...string) {
	writeJSON(w, status, messages)
}

// writeDomainError maps domain errors to HTTP responses. Unknown errors are
// logged and reported as 500 without details.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *domain.ValidationError

	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, vErr.Fields)
	case errors.Is(err, domain.ErrZeroAmount):
		writeJSON(w, http.StatusBadRequest, map[string][]string{"sum": {domain.ErrZeroAmount.Error()}})
	case errors.Is(err, domain.ErrInvalidPage):
		writeDetail(w, http.StatusNotFound, "Invalid page.")
	case errors.Is(err, domain.ErrDebtorNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		writeDetail(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, domain.ErrForbidden):
		writeDetail(w, http.StatusForbidden, domain.ErrForbidden.Error())
	case errors.Is(err, domain.ErrUnsupportedFormat):
		writeDetail(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, domain.ErrNoActiveCurrency):
		writeMessages(w, http.StatusBadRequest, domain.ErrNoActiveCurrency.Error())
	case errors.Is(err, domain.ErrNoTransactions):
		writeMessages(w, http.StatusBadRequest, domain.ErrNoTransactions.Error())
	case errors.Is(err, domain.ErrInvalidActivation):
		writeMessages(w, http.StatusBadRequest, domain.ErrInvalidActivation.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeDetail(w, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error())
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token.")
	default:
		log.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads the request body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	switch {
	case err == nil:
		return true
	case errors.Is(err, dto.ErrDateFormat):
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"date": {"Date has wrong format. Use one of these formats instead: YYYY-MM-DD."},
		})
	case errors.Is(err, io.EOF):
		writeDetail(w, http.StatusBadRequest, "JSON parse error - empty body")
	default:
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
	}
	return false
}

// currentUserID returns the authenticated user. Routes using it sit behind
// the auth middleware, so a miss is a wiring bug reported as 401.
func currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return "", false
	}
	return user.ID, true
}

// pathID parses a numeric URL parameter. Anything else is a 404.
func pathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}

// pageRequest reads ?page= and ?size=. A malformed page is passed on as 0 so
// it is rejected as an invalid page.
func pageRequest(r *http.Request) usecase.PageRequest {
	q := r.URL.Query()

	req := usecase.PageRequest{Page: 1}
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			n = 0
		}
		req.Page = n
	}
	if n, err := strconv.Atoi(q.Get("size")); err == nil {
		req.Size = n
	}
	return req
}

// pageLinks builds absolute next/previous links from the request URL.
func pageLinks(r *http.Request, number int, hasNext, hasPrevious bool) (next, previous *string) {
	if hasNext {
		link := pageURL(r, number+1)
		next = &link
	}
	if hasPrevious {
		link := pageURL(r, number-1)
		previous = &link
	}
	return next, previous
}

func pageURL(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := r.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}
