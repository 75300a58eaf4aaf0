package events

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_EmitPublishesAndLogs(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus()
	manager := NewManager(bus, zerolog.New(&buf))

	var received []Event
	unsubscribe := bus.Subscribe(func(e Event) { received = append(received, e) }, RollCompleted)
	defer unsubscribe()

	manager.Emit("rollers", &RollCompletedData{Slug: "realistic-equine", Outcomes: 6})
	manager.Emit("rollers", &RollerChangedData{Type: RollerUpdated, Slug: "realistic-equine"})

	require.Len(t, received, 1)
	assert.Equal(t, RollCompleted, received[0].Type)
	assert.Equal(t, "rollers", received[0].Module)
	data, ok := received[0].Data.(*RollCompletedData)
	require.True(t, ok)
	assert.Equal(t, 6, data.Outcomes)

	assert.Contains(t, buf.String(), `"event_type":"ROLL_COMPLETED"`)
	assert.Contains(t, buf.String(), `"event_type":"ROLLER_UPDATED"`)
}

func TestManager_EmitError(t *testing.T) {
	bus := NewBus()
	manager := NewManager(bus, zerolog.Nop())

	var got Event
	defer bus.Subscribe(func(e Event) { got = e }, ErrorOccurred)()

	manager.EmitError("backup", errors.New("bucket missing"), map[string]interface{}{"bucket": "x"})

	assert.Equal(t, ErrorOccurred, got.Type)
	data := got.Data.(map[string]interface{})
	assert.Equal(t, "bucket missing", data["error"])
}

func TestBus_SubscribeAllAndUnsubscribe(t *testing.T) {
	bus := NewBus()

	count := 0
	unsubscribe := bus.Subscribe(func(Event) { count++ })
	for _, typ := range AllTypes {
		assert.Equal(t, 1, bus.SubscriberCount(typ))
	}

	bus.Publish(Event{Type: RollerCreated})
	bus.Publish(Event{Type: BackupCompleted})
	assert.Equal(t, 2, count)

	unsubscribe()
	unsubscribe()
	bus.Publish(Event{Type: RollerCreated})
	assert.Equal(t, 2, count)
	assert.Zero(t, bus.SubscriberCount(RollerCreated))
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	defer bus.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	}, RollCompleted)()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(Event{Type: RollCompleted})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, count)
}

func TestManager_NilBus(t *testing.T) {
	manager := NewManager(nil, zerolog.Nop())
	assert.NotPanics(t, func() {
		manager.Emit("rollers", &BackupCompletedData{Key: "k"})
	})
}
