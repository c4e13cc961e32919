package okx

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		method    string
		path      string
		body      string
		want      string
	}{
		{
			name:      "websocket login prehash",
			timestamp: "1700000000",
			method:    "GET",
			path:      verifyPath,
			body:      "",
			want:      "0uAi5j594sWw9rkXI4knzlNhWDTrHUJBZExNMGGD2gs=",
		},
		{
			name:      "rest request with body",
			timestamp: "2023-11-14T22:13:20.000Z",
			method:    "POST",
			path:      "/api/v5/trade/order",
			body:      `{"instId":"BTC-USDT"}`,
			want:      "gfs6DwXwo+LevjuPbgLIG/SmchVsteNM3Bx0avbQ+cA=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sign("test-secret", tt.timestamp, tt.method, tt.path, tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSignEmptySecret(t *testing.T) {
	_, err := Sign("", "1700000000", "GET", verifyPath, "")
	assert.Error(t, err)
}

func TestTimestampFormats(t *testing.T) {
	at := time.Date(2023, 11, 14, 22, 13, 20, 123_000_000, time.UTC)

	assert.Equal(t, "2023-11-14T22:13:20.123Z", RestTimestamp(at))
	assert.Equal(t, "1700000000", LoginTimestamp(at))
}

func TestBuildLogin(t *testing.T) {
	creds := NewCredentials("test-key", "test-secret", "test-pass")
	at := time.Unix(1700000000, 0)

	frame, err := BuildLogin(creds, at)
	require.NoError(t, err)

	var req struct {
		Op   string `json:"op"`
		Args []struct {
			APIKey     string `json:"apiKey"`
			Passphrase string `json:"passphrase"`
			Timestamp  string `json:"timestamp"`
			Sign       string `json:"sign"`
		} `json:"args"`
	}
	require.NoError(t, json.Unmarshal(frame, &req))

	assert.Equal(t, "login", req.Op)
	require.Len(t, req.Args, 1)
	assert.Equal(t, "test-key", req.Args[0].APIKey)
	assert.Equal(t, "test-pass", req.Args[0].Passphrase)
	assert.Equal(t, "1700000000", req.Args[0].Timestamp)
	assert.Equal(t, "0uAi5j594sWw9rkXI4knzlNhWDTrHUJBZExNMGGD2gs=", req.Args[0].Sign)
}

func TestBuildLoginEmptySecret(t *testing.T) {
	_, err := BuildLogin(NewCredentials("key", "", "pass"), time.Now())
	assert.Error(t, err)
}
