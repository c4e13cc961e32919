package okx

import (
	"fmt"
	"os"
)

// Default OKX endpoints.
const (
	DefaultAPIURL               = "https://www.okx.com"
	DefaultWebsocketURL         = "wss://ws.okx.com:8443/ws/v5/public"
	DefaultPrivateWebsocketURL  = "wss://ws.okx.com:8443/ws/v5/private"
	DefaultBusinessWebsocketURL = "wss://ws.okx.com:8443/ws/v5/business"
)

// Environment variables recognized by the connector.
const (
	envAPIURL              = "OKX_API_URL"
	envWebsocketURL        = "OKX_WEBSOCKET_URL"
	envPrivateWebsocketURL = "OKX_PRIVATE_WEBSOCKET_URL"
	envWebsocketFallbacks  = "OKX_WEBSOCKET_FALLBACKS"
	envAPIKey              = "OKX_API_KEY"
	envAPISecret           = "OKX_API_SECRET"
	envPassphrase          = "OKX_PASSPHRASE"
	envSimulatedTrading    = "OKX_SIMULATED_TRADING"
)

// PublicWebsocketURL returns the public endpoint, honoring the
// OKX_WEBSOCKET_URL override.
func PublicWebsocketURL() string {
	if url := os.Getenv(envWebsocketURL); url != "" {
		return url
	}
	return DefaultWebsocketURL
}

// PrivateWebsocketURL returns the private endpoint, honoring the
// OKX_PRIVATE_WEBSOCKET_URL override.
func PrivateWebsocketURL() string {
	if url := os.Getenv(envPrivateWebsocketURL); url != "" {
		return url
	}
	return DefaultPrivateWebsocketURL
}

// APIURL returns the REST base URL, honoring the OKX_API_URL override.
func APIURL() string {
	if url := os.Getenv(envAPIURL); url != "" {
		return url
	}
	return DefaultAPIURL
}

// SimulatedTrading reports whether requests should carry the demo-trading
// header.
func SimulatedTrading() bool {
	return os.Getenv(envSimulatedTrading) == "1"
}

// CredentialsFromEnv loads the API key triple from OKX_API_KEY,
// OKX_API_SECRET and OKX_PASSPHRASE.
func CredentialsFromEnv() (Credentials, error) {
	for _, name := range []string{envAPIKey, envAPISecret, envPassphrase} {
		if os.Getenv(name) == "" {
			return Credentials{}, fmt.Errorf("missing environment variable %s", name)
		}
	}
	return NewCredentials(
		os.Getenv(envAPIKey),
		os.Getenv(envAPISecret),
		os.Getenv(envPassphrase),
	), nil
}
