package okx

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryNetEffect(t *testing.T) {
	r := NewRegistry()

	btc := Subscription{Channel: ChannelTickers, Args: NewArgs().WithInstID("BTC-USDT")}
	eth := Subscription{Channel: ChannelTickers, Args: NewArgs().WithInstID("ETH-USDT")}
	books := Subscription{Channel: ChannelBooks5, Args: NewArgs().WithInstID("BTC-USDT")}

	r.Upsert(btc)
	r.Upsert(eth)
	r.Upsert(books)
	require.Equal(t, 3, r.Len())

	// Upserting the same key replaces, not duplicates.
	r.Upsert(btc)
	assert.Equal(t, 3, r.Len())

	r.Remove(eth.Key())
	assert.Equal(t, 2, r.Len())

	// Removing a key that was never subscribed is a no-op.
	r.Remove(SubscriptionKey{Channel: ChannelTrades, InstID: "XRP-USDT"})
	assert.Equal(t, 2, r.Len())

	keys := make(map[SubscriptionKey]bool)
	for _, sub := range r.Snapshot() {
		keys[sub.Key()] = true
	}
	assert.True(t, keys[btc.Key()])
	assert.True(t, keys[books.Key()])
	assert.False(t, keys[eth.Key()])
}

func TestRegistryKeyIgnoresParams(t *testing.T) {
	// Same channel+instId with different params is one intent: the latest
	// descriptor wins.
	r := NewRegistry()
	first := Subscription{Channel: ChannelBooks, Args: NewArgs().WithInstID("BTC-USDT")}
	second := Subscription{
		Channel: ChannelBooks,
		Args:    NewArgs().WithInstID("BTC-USDT").WithParam("sz", "50"),
	}

	r.Upsert(first)
	r.Upsert(second)
	require.Equal(t, 1, r.Len())

	snap := r.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "50", snap[0].Args.Params["sz"])
}

func TestRegistrySnapshotIsCopy(t *testing.T) {
	r := NewRegistry()
	r.Upsert(Subscription{Channel: ChannelTickers, Args: NewArgs().WithInstID("BTC-USDT")})

	snap := r.Snapshot()
	require.Len(t, snap, 1)

	// Mutating after the snapshot does not alter it.
	r.Remove(snap[0].Key())
	assert.Len(t, snap, 1)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryConcurrentMutation(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sub := Subscription{
					Channel: ChannelTickers,
					Args:    NewArgs().WithInstID(fmt.Sprintf("INST-%d-%d", i, j)),
				}
				r.Upsert(sub)
				_ = r.Snapshot()
				r.Remove(sub.Key())
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len())
}
