package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/iho/debtledger/internal/usecase"
)

const (
	IdempotencyKeyHeader    = "Idempotency-Key"
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	processingMarker = "processing"
)

type releaser interface {
	Release(ctx context.Context, key string) error
}

// cachedResponse is what gets stored for a completed request. Request pins
// the key to the method and path it was first used with.
type cachedResponse struct {
	Request     string `json:"request"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyMiddleware deduplicates POST and PUT requests (debtor and
// transaction creation and replacement) that carry an Idempotency-Key. Keys
// are scoped to the authenticated user. When the store is unreachable the
// request is served without deduplication.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
	ttl   time.Duration
}

func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" || (r.Method != http.MethodPost && r.Method != http.MethodPut) {
			next.ServeHTTP(w, r)
			return
		}
		if user, ok := GetUserFromContext(r.Context()); ok {
			key = user.ID + ":" + key
		}

		ctx := r.Context()
		logger := log.Ctx(ctx).With().Str("idempotency_key", key).Logger()
		request := r.Method + " " + r.URL.Path

		seen, stored, err := m.store.CheckAndSet(ctx, key, nil, m.ttl)
		if err != nil {
			logger.Warn().Err(err).Msg("idempotency store unavailable, serving without deduplication")
			next.ServeHTTP(w, r)
			return
		}
		if seen {
			m.replay(logger.WithContext(ctx), w, stored, request)
			return
		}

		// A panic never reaches the status check below; free the key before
		// Recovery turns it into a 500.
		defer func() {
			if rec := recover(); rec != nil {
				m.release(ctx, key)
				panic(rec)
			}
		}()

		var body bytes.Buffer
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Tee(&body)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		if status < 200 || status >= 300 {
			m.release(ctx, key)
			return
		}

		payload, err := json.Marshal(cachedResponse{
			Request:     request,
			Status:      status,
			ContentType: ww.Header().Get("Content-Type"),
			Body:        body.Bytes(),
		})
		if err == nil {
			err = m.store.Update(ctx, key, payload, m.ttl)
		}
		if err != nil {
			logger.Error().Err(err).Msg("failed to store idempotent response")
		}
	})
}

func (m *IdempotencyMiddleware) release(ctx context.Context, key string) {
	rel, ok := m.store.(releaser)
	if !ok {
		return
	}
	if err := rel.Release(ctx, key); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
	}
}

func (m *IdempotencyMiddleware) replay(ctx context.Context, w http.ResponseWriter, stored []byte, request string) {
	if stored == nil || string(stored) == processingMarker {
		writeDetail(w, http.StatusConflict, "A request with this idempotency key is in progress.")
		return
	}

	var resp cachedResponse
	if err := json.Unmarshal(stored, &resp); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("corrupt idempotency entry")
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if resp.Request != request {
		writeDetail(w, http.StatusUnprocessableEntity, "Idempotency-Key was already used for a different request.")
		return
	}

	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.Header().Set(IdempotencyReplayHeader, "true")
	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}
