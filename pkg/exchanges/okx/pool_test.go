package okx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolCandidatesForDefaultURL(t *testing.T) {
	t.Setenv(envWebsocketFallbacks, "")

	p := newEndpointPool(DefaultWebsocketURL)

	assert.Equal(t, []string{
		"wss://ws.okx.com/ws/v5/public",
		"wss://ws.okx.com:443/ws/v5/public",
		"wss://ws.okx.com:8443/ws/v5/public",
	}, p.candidates())
}

func TestPoolCandidatesForAlternateHost(t *testing.T) {
	t.Setenv(envWebsocketFallbacks, "")

	p := newEndpointPool("wss://wsaws.okx.com:8443/ws/v5/public")

	// Primary host in all port variants first, then the stock host.
	assert.Equal(t, []string{
		"wss://wsaws.okx.com/ws/v5/public",
		"wss://wsaws.okx.com:443/ws/v5/public",
		"wss://wsaws.okx.com:8443/ws/v5/public",
		"wss://ws.okx.com/ws/v5/public",
		"wss://ws.okx.com:443/ws/v5/public",
		"wss://ws.okx.com:8443/ws/v5/public",
	}, p.candidates())
}

func TestPoolEnvFallbacks(t *testing.T) {
	t.Setenv(envWebsocketFallbacks, "wss://backup.example.com/ws, not a url ,wss://ws.okx.com/ws/v5/public")

	p := newEndpointPool(DefaultWebsocketURL)
	candidates := p.candidates()

	assert.Contains(t, candidates, "wss://backup.example.com/ws")
	// Malformed entries are dropped, duplicates collapse.
	assert.Len(t, candidates, 4)
}

func TestPoolRotation(t *testing.T) {
	t.Setenv(envWebsocketFallbacks, "")

	p := newEndpointPool(DefaultWebsocketURL)
	require.Equal(t, 3, p.size())

	first := p.current()
	p.advance()
	second := p.current()
	assert.NotEqual(t, first, second)

	p.advance()
	p.advance()
	assert.Equal(t, first, p.current())
}

func TestPoolSingleCandidateNeverRotates(t *testing.T) {
	p := &endpointPool{}
	p.add("ws://127.0.0.1:9999/ws")
	require.Equal(t, 1, p.size())

	p.advance()
	assert.Equal(t, "ws://127.0.0.1:9999/ws", p.current())
}

func TestPoolUnparseablePrimary(t *testing.T) {
	t.Setenv(envWebsocketFallbacks, "")

	// A primary that cannot be parsed is still kept verbatim so the dial
	// error surfaces to the caller instead of an empty pool panicking.
	p := newEndpointPool("::not-a-url::")
	assert.Equal(t, 1, p.size())
}
