package middleware

import (
	"bytes"
	"context"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/condo/backend/internal/infrastructure/cache"
	"github.com/condo/backend/internal/infrastructure/logger"
	"github.com/condo/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// Idempotency headers
const (
	HeaderIdempotencyKey   = "Idempotency-Key"
	HeaderIdempotentReplay = "Idempotent-Replayed"
)

const maxIdempotencyKeyLength = 255

// Idempotency replays the recorded response when a mutating request repeats
// an Idempotency-Key. Keys are scoped to actor, method and path. Responses
// with a 5xx status are not recorded so the client can retry. When the store
// is unreachable the request proceeds unprotected.
func Idempotency(store cache.ResponseStore, ttl time.Duration) gin.HandlerFunc {
	if store == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		if key == "" || !isMutating(c.Request.Method) {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", logger.GetRequestID(ctx),
			))
			return
		}

		scoped := scopeKey(logger.GetActor(ctx), c.Request.Method, c.Request.URL.Path, key)
		existing, reserved, err := store.Reserve(ctx, scoped, ttl)
		if err != nil {
			logger.GetGinLogger(c).Warn("idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if existing != nil {
			c.Header(HeaderIdempotentReplay, "true")
			c.Data(existing.Status, existing.ContentType, existing.Body)
			c.Abort()
			return
		}
		if !reserved {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponse(
				dto.ErrCodeConcurrencyConflict,
				"A request with this Idempotency-Key is still in progress",
				logger.GetRequestID(ctx),
			))
			return
		}

		rec := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		// the request context may already be cancelled
		storeCtx := context.WithoutCancel(ctx)
		status := rec.Status()
		if status >= http.StatusInternalServerError {
			if err := store.Release(storeCtx, scoped); err != nil {
				logger.GetGinLogger(c).Warn("failed to release idempotency key", zap.Error(err))
			}
			return
		}
		resp := cache.StoredResponse{
			Status:      status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		}
		if err := store.Complete(storeCtx, scoped, resp, ttl); err != nil {
			logger.GetGinLogger(c).Warn("failed to record idempotent response", zap.Error(err))
		}
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// scopeKey digests the caller-chosen key together with its scope into a
// fixed-length store key
func scopeKey(actor, method, path, key string) string {
	sum := blake2b.Sum256([]byte(strings.Join([]string{actor, method, path, key}, "|")))
	return hex.EncodeToString(sum[:])
}
