package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veiloq/okx-connector/pkg/logging"
)

func TestRouterForwardsParsedFrames(t *testing.T) {
	r := NewRouter(4, logging.NewNopLogger())

	r.Route([]byte(`{"event":"subscribe","arg":{"channel":"tickers"}}`))

	select {
	case msg := <-r.Messages():
		frame, ok := msg.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "subscribe", frame["event"])
	default:
		t.Fatal("frame not forwarded")
	}
}

func TestRouterDropsUnparseableFrames(t *testing.T) {
	r := NewRouter(4, logging.NewNopLogger())

	r.Route([]byte(`not json`))

	select {
	case msg := <-r.Messages():
		t.Fatalf("unexpected frame: %v", msg)
	default:
	}
}

func TestRouterDropsOnOverflow(t *testing.T) {
	r := NewRouter(1, logging.NewNopLogger())

	// The second frame overflows the capacity-one channel and is dropped;
	// Route never blocks.
	r.Route([]byte(`{"seq":1}`))
	r.Route([]byte(`{"seq":2}`))

	msg := <-r.Messages()
	frame, ok := msg.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), frame["seq"])

	select {
	case msg := <-r.Messages():
		t.Fatalf("overflow frame was not dropped: %v", msg)
	default:
	}
}

func TestRouterCloseOutput(t *testing.T) {
	r := NewRouter(1, logging.NewNopLogger())
	r.CloseOutput()

	_, ok := <-r.Messages()
	assert.False(t, ok)
}
