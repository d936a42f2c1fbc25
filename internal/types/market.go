package types

import "time"

// MarketData represents a single OHLCV bar for a listed security.
type MarketData struct {
	Id     string    `json:"id"`
	Symbol string    `json:"symbol"`
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}
