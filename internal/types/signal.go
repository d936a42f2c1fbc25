package types

import "time"

type SignalType string

const (
	// SignalTypeBuy indicates the indicator conditions favor entering a position
	SignalTypeBuy SignalType = "buy"
	// SignalTypeSell indicates the indicator conditions favor exiting a position
	SignalTypeSell SignalType = "sell"
	// SignalTypeNoAction indicates no actionable condition was met
	SignalTypeNoAction SignalType = "no_action"
)

type Signal struct {
	// Time is the time of the bar that produced the signal
	Time time.Time `json:"time"`
	// Type is the type of the signal
	Type SignalType `json:"type"`
	// Name is the name of the signal
	Name string `json:"name"`
	// Reason is the human readable condition that fired
	Reason string `json:"reason"`
	// RawValue carries the raw indicator values behind the signal
	RawValue any `json:"raw_value"`
	// Symbol is the symbol of the signal
	Symbol string `json:"symbol"`
	// Indicator is the indicator that generated the signal
	Indicator IndicatorType `json:"indicator"`
}
