package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/condo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "LedgerEntry", uuid.New())}
}

type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	paid := newTestHandler("LedgerEntryPaid")
	bus.Subscribe(paid)
	all := newTestHandler()
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("LedgerEntryPaid"),
		newTestEvent("LedgerEntryCreated"),
	))

	assert.Equal(t, 1, paid.count())
	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_HandlerFailuresAreSwallowed(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newTestHandler("LedgerEntryPaid")
	failing.err = errors.New("audit store down")
	panicking := newTestHandler("LedgerEntryPaid")
	panicking.panicWith = "boom"
	after := newTestHandler("LedgerEntryPaid")

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(after)

	err := bus.Publish(context.Background(), newTestEvent("LedgerEntryPaid"))
	require.NoError(t, err)
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, after.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler("LedgerEntryPaid", "LedgerEntryCreated")
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("LedgerEntryPaid")))
	assert.Equal(t, 0, h.count())
	assert.Empty(t, bus.registry.GetHandlers("LedgerEntryCreated"))
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	assert.False(t, bus.IsRunning())
	require.NoError(t, bus.Start(context.Background()))
	assert.True(t, bus.IsRunning())
	require.NoError(t, bus.Stop(context.Background()))
	assert.False(t, bus.IsRunning())
}
