package eventbus

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-tcplink/pkg/interfaces"
	"github.com/dep2p/go-tcplink/pkg/types"
)

// ============================================================================
// 基础功能测试
// ============================================================================

func TestBus_NewBus(t *testing.T) {
	bus := NewBus()
	for _, k := range types.AllEventKinds() {
		assert.Zero(t, bus.Subscribers(k), k.String())
	}
	assert.Zero(t, bus.Subscribers(types.EventUnknown))
}

func TestBus_SubscribeAndEmit(t *testing.T) {
	bus := NewBus()

	var got []types.Event
	sub, err := bus.Subscribe(types.EventDataReceived, func(evt types.Event) {
		got = append(got, evt)
	})
	require.NoError(t, err)
	assert.Equal(t, types.EventDataReceived, sub.Kind())
	assert.Equal(t, 1, bus.Subscribers(types.EventDataReceived))

	bus.Emit(types.DataReceivedEvent{Payload: []byte("a")})
	bus.Emit(types.DataSentEvent{Payload: []byte("b")})
	bus.Emit(types.DataReceivedEvent{Payload: []byte("c")})

	require.Len(t, got, 2)
	assert.Equal(t, []byte("a"), got[0].(types.DataReceivedEvent).Payload)
	assert.Equal(t, []byte("c"), got[1].(types.DataReceivedEvent).Payload)
}

func TestBus_SubscribeErrors(t *testing.T) {
	bus := NewBus()

	_, err := bus.Subscribe(types.EventUnknown, func(types.Event) {})
	assert.ErrorIs(t, err, ErrInvalidEventType)

	_, err = bus.Subscribe(types.EventKind(99), func(types.Event) {})
	assert.ErrorIs(t, err, ErrInvalidEventType)

	_, err = bus.Subscribe(types.EventDataSent, nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := NewBus()

	var a, b atomic.Int32
	_, err := bus.Subscribe(types.EventServerStarted, func(types.Event) { a.Add(1) })
	require.NoError(t, err)
	_, err = bus.Subscribe(types.EventServerStarted, func(types.Event) { b.Add(1) })
	require.NoError(t, err)

	bus.Emit(types.ServerStartedEvent{})
	assert.Equal(t, int32(1), a.Load())
	assert.Equal(t, int32(1), b.Load())
}

func TestBus_EmitNoSubscribers(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() {
		bus.Emit(types.ClientConnectedEvent{})
		bus.Emit(nil)
	})
}

// ============================================================================
// 订阅取消
// ============================================================================

func TestSubscription_Close(t *testing.T) {
	bus := NewBus()

	var n atomic.Int32
	sub, err := bus.Subscribe(types.EventDataSent, func(types.Event) { n.Add(1) })
	require.NoError(t, err)

	bus.Emit(types.DataSentEvent{})
	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	bus.Emit(types.DataSentEvent{})

	assert.Equal(t, int32(1), n.Load())
	assert.Zero(t, bus.Subscribers(types.EventDataSent))
}

func TestSubscription_CloseInsideHandler(t *testing.T) {
	bus := NewBus()

	var n atomic.Int32
	var sub pkgif.Subscription
	sub, err := bus.Subscribe(types.EventDataSent, func(types.Event) {
		n.Add(1)
		_ = sub.Close()
	})
	require.NoError(t, err)

	bus.Emit(types.DataSentEvent{})
	bus.Emit(types.DataSentEvent{})
	assert.Equal(t, int32(1), n.Load())
}

// ============================================================================
// Panic 隔离
// ============================================================================

func TestBus_PanicIsolation(t *testing.T) {
	bus := NewBus()

	var after atomic.Int32
	_, err := bus.Subscribe(types.EventClientDisconnected, func(types.Event) {
		panic("boom")
	})
	require.NoError(t, err)
	_, err = bus.Subscribe(types.EventClientDisconnected, func(types.Event) {
		after.Add(1)
	})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		bus.Emit(types.ClientDisconnectedEvent{})
		bus.Emit(types.ClientDisconnectedEvent{})
	})
	assert.Equal(t, int32(2), after.Load())
	assert.Equal(t, uint64(2), bus.Panics())
}

// ============================================================================
// 关闭
// ============================================================================

func TestBus_Close(t *testing.T) {
	bus := NewBus()

	var n atomic.Int32
	_, err := bus.Subscribe(types.EventStatusChanged, func(types.Event) { n.Add(1) })
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	bus.Emit(types.StatusChangedEvent{})
	assert.Zero(t, n.Load())

	_, err = bus.Subscribe(types.EventStatusChanged, func(types.Event) {})
	assert.ErrorIs(t, err, ErrClosed)
}

// ============================================================================
// 泛型辅助
// ============================================================================

func TestOn(t *testing.T) {
	bus := NewBus()

	var got []types.ConnStatus
	sub, err := On(bus, func(e types.StatusChangedEvent) {
		got = append(got, e.Status)
	})
	require.NoError(t, err)
	assert.Equal(t, types.EventStatusChanged, sub.Kind())

	bus.Emit(types.StatusChangedEvent{Status: types.StatusConnecting})
	bus.Emit(types.StatusChangedEvent{Status: types.StatusConnected})

	assert.Equal(t, []types.ConnStatus{types.StatusConnecting, types.StatusConnected}, got)

	_, err = On[types.DataSentEvent](bus, nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}

// ============================================================================
// 并发
// ============================================================================

func TestBus_ConcurrentEmitSubscribe(t *testing.T) {
	bus := NewBus()

	var received atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sub, err := bus.Subscribe(types.EventDataReceived, func(types.Event) {
					received.Add(1)
				})
				if err == nil && j%2 == 0 {
					_ = sub.Close()
				}
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Emit(types.DataReceivedEvent{})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 4*25, bus.Subscribers(types.EventDataReceived))

	before := received.Load()
	bus.Emit(types.DataReceivedEvent{})
	assert.Equal(t, before+100, received.Load())
}

// TestBus_PerEmitterOrder 同一发射者的事件按顺序到达
func TestBus_PerEmitterOrder(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	seen := make(map[string][]byte)
	_, err := On(bus, func(e types.DataReceivedEvent) {
		mu.Lock()
		seen[e.ConnID.String()] = append(seen[e.ConnID.String()], e.Payload[0])
		mu.Unlock()
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		id := types.NewConnID()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Emit(types.DataReceivedEvent{ConnID: id, Payload: []byte{byte(j)}})
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, 4)
	for id, seq := range seen {
		require.Len(t, seq, 100, id)
		for j, b := range seq {
			assert.Equal(t, byte(j), b, id)
		}
	}
}
