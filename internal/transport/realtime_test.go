package transport

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iksnae/weather-chat/internal/chat"
	"github.com/iksnae/weather-chat/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, frames <-chan InboundFrame) (InboundFrame, bool) {
	t.Helper()
	select {
	case frame, ok := <-frames:
		return frame, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
		return InboundFrame{}, false
	}
}

type stateRecorder struct {
	mu     sync.Mutex
	states []ConnectionState
}

func (r *stateRecorder) record(s ConnectionState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) get() []ConnectionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ConnectionState(nil), r.states...)
}

func TestDialRealtime_SendAndReceive(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	ch := DialRealtime(context.Background(), backend.WSURL())
	defer ch.Close()

	require.Equal(t, StateConnected, ch.State())
	require.True(t, ch.TrySend(OutboundFrame{Content: "What's the weather in London?", Timestamp: time.Now()}))

	frame, ok := receive(t, ch.Frames())
	require.True(t, ok)
	assert.Equal(t, chat.RoleAssistant, frame.Role)
	assert.Equal(t, testutil.LondonReplyText, frame.Content)
	assert.Equal(t, testutil.LondonWeather(), frame.Data)
	assert.Equal(t, testutil.LondonTimestamp, frame.Timestamp.Time)

	sent := backend.Frames()
	require.Len(t, sent, 1)
	assert.Equal(t, "What's the weather in London?", sent[0].Content)
	assert.NotEmpty(t, sent[0].Timestamp)
}

func TestDialRealtime_HandshakeFailure(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.SetRealtimeEnabled(false)
	rec := &stateRecorder{}

	ch := DialRealtime(context.Background(), backend.WSURL(), WithStateHandler(rec.record))

	assert.Equal(t, StateFallback, ch.State())
	assert.False(t, ch.TrySend(OutboundFrame{Content: "hello"}))
	_, ok := <-ch.Frames()
	assert.False(t, ok, "frames closed when the handshake fails")
	assert.Equal(t, []ConnectionState{StateFallback}, rec.get())
	assert.NoError(t, ch.Close())
}

func TestDialRealtime_SkipsMalformedFrames(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.SetRealtimeHandler(func(testutil.ClientFrame) [][]byte {
		return [][]byte{
			[]byte("not json"),
			testutil.AssistantFrame("ok", nil),
		}
	})
	ch := DialRealtime(context.Background(), backend.WSURL())
	defer ch.Close()

	require.True(t, ch.TrySend(OutboundFrame{Content: "hello"}))

	frame, ok := receive(t, ch.Frames())
	require.True(t, ok)
	assert.Equal(t, "ok", frame.Content)
	assert.Nil(t, frame.Data)
}

func TestDialRealtime_ServerDrop(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	rec := &stateRecorder{}
	ch := DialRealtime(context.Background(), backend.WSURL(), WithStateHandler(rec.record))
	defer ch.Close()
	// a round trip guarantees the server has registered the connection
	require.True(t, ch.TrySend(OutboundFrame{Content: "ping"}))
	_, ok := receive(t, ch.Frames())
	require.True(t, ok)

	backend.DropConnections()

	_, ok = receive(t, ch.Frames())
	assert.False(t, ok)
	assert.Equal(t, StateFallback, ch.State())
	assert.False(t, ch.TrySend(OutboundFrame{Content: "hello"}))
	assert.Equal(t, []ConnectionState{StateConnected, StateFallback}, rec.get())
}

func TestWSChannel_Close(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	ch := DialRealtime(context.Background(), backend.WSURL())

	require.NoError(t, ch.Close())
	assert.Equal(t, StateFallback, ch.State())
	assert.False(t, ch.TrySend(OutboundFrame{Content: "hello"}))
	assert.NoError(t, ch.Close(), "second close is a no-op")

	select {
	case <-ch.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("read loop did not stop")
	}
}

func TestConnectionState_String(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "fallback", StateFallback.String())
}

func TestWireTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"naive", `"2024-05-01T12:00:00"`, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{"fractional", `"2024-05-01T12:00:00.123456"`, time.Date(2024, 5, 1, 12, 0, 0, 123456000, time.UTC)},
		{"zulu", `"2024-05-01T12:00:00Z"`, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{"space separated", `"2024-05-01 12:00:00"`, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{"garbage", `"yesterday"`, time.Time{}},
		{"null", `null`, time.Time{}},
		{"number", `1714564800`, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var wt wireTime
			require.NoError(t, wt.UnmarshalJSON([]byte(tt.input)))
			assert.True(t, tt.want.Equal(wt.Time), "got %v", wt.Time)
		})
	}
}
