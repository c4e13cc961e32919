package okx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointDefaultsAndOverrides(t *testing.T) {
	t.Setenv(envWebsocketURL, "")
	t.Setenv(envPrivateWebsocketURL, "")
	t.Setenv(envAPIURL, "")

	assert.Equal(t, DefaultWebsocketURL, PublicWebsocketURL())
	assert.Equal(t, DefaultPrivateWebsocketURL, PrivateWebsocketURL())
	assert.Equal(t, DefaultAPIURL, APIURL())

	t.Setenv(envWebsocketURL, "wss://wsaws.okx.com:8443/ws/v5/public")
	t.Setenv(envPrivateWebsocketURL, "wss://wsaws.okx.com:8443/ws/v5/private")
	t.Setenv(envAPIURL, "https://aws.okx.com")

	assert.Equal(t, "wss://wsaws.okx.com:8443/ws/v5/public", PublicWebsocketURL())
	assert.Equal(t, "wss://wsaws.okx.com:8443/ws/v5/private", PrivateWebsocketURL())
	assert.Equal(t, "https://aws.okx.com", APIURL())
}

func TestSimulatedTrading(t *testing.T) {
	t.Setenv(envSimulatedTrading, "")
	assert.False(t, SimulatedTrading())

	t.Setenv(envSimulatedTrading, "1")
	assert.True(t, SimulatedTrading())
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv(envAPIKey, "test-key")
	t.Setenv(envAPISecret, "test-secret")
	t.Setenv(envPassphrase, "test-pass")

	creds, err := CredentialsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "test-key", creds.APIKey)
	assert.Equal(t, "test-secret", creds.APISecret)
	assert.Equal(t, "test-pass", creds.Passphrase)
}

func TestCredentialsFromEnvMissing(t *testing.T) {
	t.Setenv(envAPIKey, "test-key")
	t.Setenv(envAPISecret, "")
	t.Setenv(envPassphrase, "test-pass")

	_, err := CredentialsFromEnv()
	assert.Error(t, err)
}
