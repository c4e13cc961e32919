package okx

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/veiloq/okx-connector/pkg/exchanges/interfaces"
)

// Credentials holds the API key triple required for private endpoints.
type Credentials struct {
	APIKey     string
	APISecret  string
	Passphrase string
}

// NewCredentials creates a credential holder.
func NewCredentials(apiKey, apiSecret, passphrase string) Credentials {
	return Credentials{APIKey: apiKey, APISecret: apiSecret, Passphrase: passphrase}
}

// verifyPath is the fixed path signed for WebSocket logins.
const verifyPath = "/users/self/verify"

var _ interfaces.Signer = Sign

// Sign computes the OKX request signature: base64 of the HMAC-SHA256 of
// timestamp+method+path+body keyed with the API secret. The same primitive
// serves REST headers and the WebSocket login frame.
func Sign(secret, timestamp, method, path, body string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("empty API secret")
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + method + path + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// RestTimestamp formats a time the way REST request headers expect:
// ISO 8601 with millisecond precision in UTC.
func RestTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// LoginTimestamp formats a time the way the WebSocket login frame expects:
// Unix epoch seconds as a decimal string.
func LoginTimestamp(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

// BuildLogin assembles the login frame for a private session. It is a pure
// function: the signature covers timestamp+"GET"+verifyPath with an empty
// body, and the frame packages the signature with the API key, passphrase
// and timestamp. No I/O happens here; the session sends the frame right
// after connecting.
func BuildLogin(creds Credentials, now time.Time) ([]byte, error) {
	timestamp := LoginTimestamp(now)
	sign, err := Sign(creds.APISecret, timestamp, "GET", verifyPath, "")
	if err != nil {
		return nil, fmt.Errorf("signing login request: %w", err)
	}

	req := loginRequest{
		Op: opLogin,
		Args: []loginArg{{
			APIKey:     creds.APIKey,
			Passphrase: creds.Passphrase,
			Timestamp:  timestamp,
			Sign:       sign,
		}},
	}
	return json.Marshal(req)
}
