// Package okx implements the OKX exchange connector: a resilient streaming
// client over the v5 WebSocket API and a minimal signed REST client.
package okx

import "fmt"

// Channel identifies a logical topic on the OKX streaming feed.
type Channel string

// Public channels.
const (
	ChannelTickers        Channel = "tickers"
	ChannelTrades         Channel = "trades"
	ChannelBooks          Channel = "books"
	ChannelBooks5         Channel = "books5"
	ChannelBooksL2TBT     Channel = "books-l2-tbt"
	ChannelBlockTickers   Channel = "block-tickers"
	ChannelIndexTickers   Channel = "index-tickers"
	ChannelMarkPrice      Channel = "mark-price"
	ChannelPriceLimit     Channel = "price-limit"
	ChannelEstimatedPrice Channel = "estimated-price"
	ChannelFundingRate    Channel = "funding-rate"
	ChannelStatus         Channel = "status"
)

// Private channels (require a private endpoint and credentials).
const (
	ChannelAccount            Channel = "account"
	ChannelPositions          Channel = "positions"
	ChannelOrders             Channel = "orders"
	ChannelOrdersAlgo         Channel = "orders-algo"
	ChannelAlgoAdvance        Channel = "algo-advance"
	ChannelBalanceAndPosition Channel = "balance_and_position"
	ChannelPositionRisk       Channel = "positions-risk"
	ChannelGreeks             Channel = "greeks"
	ChannelDepositInfo        Channel = "deposit-info"
)

// CandleChannel returns the candlestick channel for an interval, e.g.
// CandleChannel("1m") -> "candle1m".
func CandleChannel(interval string) Channel {
	return Channel(fmt.Sprintf("candle%s", interval))
}

// IndexCandleChannel returns the index candlestick channel for an interval.
func IndexCandleChannel(interval string) Channel {
	return Channel(fmt.Sprintf("index-candle%s", interval))
}

// MarkPriceCandleChannel returns the mark-price candlestick channel for an
// interval.
func MarkPriceCandleChannel(interval string) Channel {
	return Channel(fmt.Sprintf("mark-price-candle%s", interval))
}

// String returns the wire name of the channel.
func (c Channel) String() string {
	return string(c)
}

// Args carries the per-subscription parameters: the instrument the channel
// applies to plus any extra key-value parameters flattened into the request.
// Args is a value object; equal Args are interchangeable.
type Args struct {
	InstID string
	Params map[string]string
}

// NewArgs creates empty subscription arguments.
func NewArgs() Args {
	return Args{}
}

// WithInstID returns a copy of the arguments with the instrument id set.
func (a Args) WithInstID(instID string) Args {
	a.InstID = instID
	return a
}

// WithParam returns a copy of the arguments with an extra parameter added.
func (a Args) WithParam(key, value string) Args {
	params := make(map[string]string, len(a.Params)+1)
	for k, v := range a.Params {
		params[k] = v
	}
	params[key] = value
	a.Params = params
	return a
}
