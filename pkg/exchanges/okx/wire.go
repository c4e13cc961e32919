package okx

import "encoding/json"

// Operations accepted by the OKX WebSocket API.
const (
	opSubscribe   = "subscribe"
	opUnsubscribe = "unsubscribe"
	opLogin       = "login"
)

// subscriptionArg is one element of a subscribe/unsubscribe request's args
// array: the channel name, the optional instrument id, and any extra
// parameters flattened alongside them.
type subscriptionArg struct {
	Channel string            `json:"channel"`
	InstID  string            `json:"instId,omitempty"`
	Params  map[string]string `json:"-"`
}

// MarshalJSON flattens Params into the same object as channel and instId,
// matching the wire format {"channel":...,"instId":...,<extra>...}.
func (a subscriptionArg) MarshalJSON() ([]byte, error) {
	obj := make(map[string]string, len(a.Params)+2)
	for k, v := range a.Params {
		obj[k] = v
	}
	obj["channel"] = a.Channel
	if a.InstID != "" {
		obj["instId"] = a.InstID
	}
	return json.Marshal(obj)
}

// subscriptionRequest is the envelope for subscribe and unsubscribe
// operations.
type subscriptionRequest struct {
	Op   string            `json:"op"`
	Args []subscriptionArg `json:"args"`
}

// loginArg carries the authentication parameters of a login request.
type loginArg struct {
	APIKey     string `json:"apiKey"`
	Passphrase string `json:"passphrase"`
	Timestamp  string `json:"timestamp"`
	Sign       string `json:"sign"`
}

// loginRequest is the envelope for the login operation.
type loginRequest struct {
	Op   string     `json:"op"`
	Args []loginArg `json:"args"`
}

// EventResponse is the acknowledgment envelope the exchange sends for
// subscribe/unsubscribe/login operations and errors. Data frames do not use
// it; they are routed to the consumer as opaque values.
type EventResponse struct {
	Event string          `json:"event"`
	Code  string          `json:"code,omitempty"`
	Msg   string          `json:"msg,omitempty"`
	Arg   json.RawMessage `json:"arg,omitempty"`
}

func newSubscriptionRequest(op string, channel Channel, args Args) subscriptionRequest {
	return subscriptionRequest{
		Op: op,
		Args: []subscriptionArg{{
			Channel: channel.String(),
			InstID:  args.InstID,
			Params:  args.Params,
		}},
	}
}
