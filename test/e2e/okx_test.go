package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/veiloq/okx-connector/pkg/exchanges/interfaces"
	"github.com/veiloq/okx-connector/pkg/exchanges/okx"
	"github.com/veiloq/okx-connector/pkg/logging"
)

// TestOKXConnector_E2E exercises the connector against the live OKX API.
//
// To run this test:
// go test -v ./test/e2e
// Private channels additionally need OKX_API_KEY, OKX_API_SECRET and
// OKX_PASSPHRASE set.
func TestOKXConnector_E2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	logger := logging.NewLogger(logging.WithLevel(logging.DEBUG))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	t.Run("PublicStream", func(t *testing.T) {
		client := okx.NewPublicClient(okx.WithLogger(logger))

		msgs, err := client.Start()
		require.NoError(t, err, "failed to start streaming client")
		defer client.Stop()

		err = client.Subscribe(okx.ChannelTickers, okx.NewArgs().WithInstID("BTC-USDT"))
		require.NoError(t, err, "failed to subscribe")

		require.Eventually(t, func() bool {
			return client.State() == interfaces.Connected
		}, 30*time.Second, 100*time.Millisecond, "client never connected")

		// BTC-USDT ticks near-continuously; one data frame within the
		// window proves subscribe, routing and delivery end to end.
		select {
		case msg, ok := <-msgs:
			require.True(t, ok, "consumer channel closed unexpectedly")
			require.NotNil(t, msg)
		case <-time.After(30 * time.Second):
			t.Fatal("no frame received from tickers channel")
		}

		require.True(t, client.IsHealthy(), "client unhealthy after receiving data")
	})

	t.Run("ServerTime", func(t *testing.T) {
		rest := okx.NewRestClient(nil, okx.WithRestLogger(logger))

		serverTime, err := rest.ServerTime(ctx)
		require.NoError(t, err, "failed to get server time")

		drift := time.Since(serverTime)
		if drift < 0 {
			drift = -drift
		}
		require.Less(t, drift, time.Minute, "server clock drift too large")
	})

	t.Run("GetTicker", func(t *testing.T) {
		rest := okx.NewRestClient(nil, okx.WithRestLogger(logger))

		ticker, err := rest.GetTicker(ctx, "BTC-USDT")
		require.NoError(t, err, "failed to get ticker")
		require.Equal(t, "BTC-USDT", ticker.InstID)
		require.NotEmpty(t, ticker.Last)
	})

	t.Run("PrivateStream", func(t *testing.T) {
		creds, err := okx.CredentialsFromEnv()
		if err != nil {
			t.Skipf("skipping private stream test: %v", err)
		}

		client := okx.NewPrivateClient(creds, okx.WithLogger(logger))

		msgs, err := client.Start()
		require.NoError(t, err, "failed to start private client")
		defer client.Stop()
		require.NotNil(t, msgs)

		err = client.Subscribe(okx.ChannelAccount, okx.NewArgs())
		require.NoError(t, err, "failed to subscribe to account channel")

		require.Eventually(t, func() bool {
			return client.State() == interfaces.Connected
		}, 30*time.Second, 100*time.Millisecond, "private client never connected")
	})
}
