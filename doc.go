// Package okxconnector provides a Go client for the OKX exchange with a
// resilient streaming subscription layer.
//
// The library is organized around a small set of packages:
//
//   - pkg/exchanges/okx: the OKX streaming client (connection supervision,
//     subscription registry, authentication handshake, channel catalog) and a
//     minimal signed REST client
//   - pkg/websocket: the transport session owning a single WebSocket
//     connection (send/receive/heartbeat) and the message router
//   - pkg/exchanges/interfaces: shared connector contracts, connection states
//     and standardized errors
//   - pkg/logging: structured logging used throughout the library
//   - pkg/ratelimit, pkg/common: rate limiting and the retrying HTTP client
//
// Core features:
//
//   - Long-lived WebSocket sessions that survive network failures
//   - Logical subscriptions kept alive across reconnects: the registry is the
//     source of truth and is replayed after every successful connect
//   - Exponential backoff with a capped delay and an endpoint fallback pool
//   - Heartbeat monitoring (ping/pong plus message staleness detection)
//   - Private-channel authentication via HMAC-SHA256 request signing
//
// Basic usage:
//
//	client := okx.NewPublicClient()
//	msgs, err := client.Start()
//	if err != nil {
//	    log.Fatalf("start failed: %v", err)
//	}
//	defer client.Stop()
//
//	_ = client.Subscribe(okx.ChannelTickers, okx.NewArgs().WithInstID("BTC-USDT"))
//	for msg := range msgs {
//	    fmt.Printf("frame: %v\n", msg)
//	}
//
// Private channels require credentials:
//
//	creds, err := okx.CredentialsFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := okx.NewPrivateClient(creds)
//
// The consumer channel yields a continuous stream of decoded frames across
// reconnects. There is no explicit disconnect marker; callers that care about
// connectivity poll State or IsHealthy.
package okxconnector
