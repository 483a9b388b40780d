package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/condo/backend/internal/infrastructure/cache"
	"github.com/condo/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func idempotencyRouter(store cache.ResponseStore, calls *atomic.Int32, status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(logger.GinMiddleware(zap.NewNop()))
	router.Use(Idempotency(store, time.Hour))
	handler := func(c *gin.Context) {
		n := calls.Add(1)
		c.JSON(status, gin.H{"call": n})
	}
	router.POST("/entries/:id/pay", handler)
	router.GET("/entries/:id", handler)
	return router
}

func send(router *gin.Engine, method, path, key, actor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	if actor != "" {
		req.Header.Set(logger.HeaderActor, actor)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysRecordedResponse(t *testing.T) {
	store := cache.NewInMemoryResponseStore(0)
	defer store.Close()
	var calls atomic.Int32
	router := idempotencyRouter(store, &calls, http.StatusOK)

	first := send(router, http.MethodPost, "/entries/1/pay", "abc", "clerk")
	second := send(router, http.MethodPost, "/entries/1/pay", "abc", "clerk")

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(HeaderIdempotentReplay))
	assert.Empty(t, first.Header().Get(HeaderIdempotentReplay))
}

func TestIdempotency_KeyScope(t *testing.T) {
	store := cache.NewInMemoryResponseStore(0)
	defer store.Close()
	var calls atomic.Int32
	router := idempotencyRouter(store, &calls, http.StatusOK)

	send(router, http.MethodPost, "/entries/1/pay", "abc", "clerk")
	send(router, http.MethodPost, "/entries/2/pay", "abc", "clerk")
	send(router, http.MethodPost, "/entries/1/pay", "abc", "other-clerk")
	send(router, http.MethodPost, "/entries/1/pay", "", "clerk")
	send(router, http.MethodGet, "/entries/1", "abc", "clerk")
	send(router, http.MethodGet, "/entries/1", "abc", "clerk")

	assert.Equal(t, int32(6), calls.Load())
}

func TestIdempotency_ServerErrorsAreNotRecorded(t *testing.T) {
	store := cache.NewInMemoryResponseStore(0)
	defer store.Close()
	var calls atomic.Int32
	router := idempotencyRouter(store, &calls, http.StatusInternalServerError)

	send(router, http.MethodPost, "/entries/1/pay", "abc", "")
	w := send(router, http.MethodPost, "/entries/1/pay", "abc", "")

	assert.Equal(t, int32(2), calls.Load())
	assert.Empty(t, w.Header().Get(HeaderIdempotentReplay))
	assert.Equal(t, 0, store.Size())
}

func TestIdempotency_ClientErrorsAreRecorded(t *testing.T) {
	store := cache.NewInMemoryResponseStore(0)
	defer store.Close()
	var calls atomic.Int32
	router := idempotencyRouter(store, &calls, http.StatusUnprocessableEntity)

	send(router, http.MethodPost, "/entries/1/pay", "abc", "")
	w := send(router, http.MethodPost, "/entries/1/pay", "abc", "")

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestIdempotency_InFlightKeyConflicts(t *testing.T) {
	store := cache.NewInMemoryResponseStore(0)
	defer store.Close()
	var calls atomic.Int32
	router := idempotencyRouter(store, &calls, http.StatusOK)

	_, reserved, err := store.Reserve(context.Background(), scopeKey("", http.MethodPost, "/entries/1/pay", "abc"), time.Hour)
	require.NoError(t, err)
	require.True(t, reserved)

	w := send(router, http.MethodPost, "/entries/1/pay", "abc", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CONCURRENCY_CONFLICT")
	assert.Equal(t, int32(0), calls.Load())
}

func TestIdempotency_RejectsOversizedKey(t *testing.T) {
	store := cache.NewInMemoryResponseStore(0)
	defer store.Close()
	var calls atomic.Int32
	router := idempotencyRouter(store, &calls, http.StatusOK)

	long := ""
	for i := 0; len(long) <= maxIdempotencyKeyLength; i++ {
		long += strconv.Itoa(i)
	}
	w := send(router, http.MethodPost, "/entries/1/pay", long, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int32(0), calls.Load())
}

type mockResponseStore struct {
	mock.Mock
}

func (m *mockResponseStore) Reserve(ctx context.Context, key string, ttl time.Duration) (*cache.StoredResponse, bool, error) {
	args := m.Called(ctx, key, ttl)
	resp, _ := args.Get(0).(*cache.StoredResponse)
	return resp, args.Bool(1), args.Error(2)
}

func (m *mockResponseStore) Complete(ctx context.Context, key string, resp cache.StoredResponse, ttl time.Duration) error {
	return m.Called(ctx, key, resp, ttl).Error(0)
}

func (m *mockResponseStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockResponseStore) Close() error { return nil }

func TestIdempotency_StoreOutageFailsOpen(t *testing.T) {
	store := new(mockResponseStore)
	store.On("Reserve", mock.Anything, mock.Anything, time.Hour).Return(nil, false, errors.New("dial tcp: connection refused"))

	var calls atomic.Int32
	router := idempotencyRouter(store, &calls, http.StatusOK)

	w := send(router, http.MethodPost, "/entries/1/pay", "abc", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(1), calls.Load())
	store.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIdempotency_NilStoreIsPassThrough(t *testing.T) {
	var calls atomic.Int32
	router := idempotencyRouter(nil, &calls, http.StatusOK)
	send(router, http.MethodPost, "/entries/1/pay", "abc", "")
	send(router, http.MethodPost, "/entries/1/pay", "abc", "")
	assert.Equal(t, int32(2), calls.Load())
}

func TestScopeKey(t *testing.T) {
	a := scopeKey("clerk-7", http.MethodPost, "/entries/1/pay", "abc")
	assert.Len(t, a, 64)
	assert.Equal(t, a, scopeKey("clerk-7", http.MethodPost, "/entries/1/pay", "abc"))
	assert.NotEqual(t, a, scopeKey("clerk-8", http.MethodPost, "/entries/1/pay", "abc"))
	assert.NotEqual(t, a, scopeKey("clerk-7", http.MethodPost, "/entries/2/pay", "abc"))
}
