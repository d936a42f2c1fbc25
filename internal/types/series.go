package types

import "time"

// IndicatorPoint is a single timestamped indicator value. The timestamp is
// the time of the last bar inside the indicator's trailing window.
type IndicatorPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// IndicatorSeries is an ordered sequence of indicator values derived from
// exactly one price series. For an N-period window the series starts at the
// N-th bar of the underlying price series.
type IndicatorSeries struct {
	Symbol    string           `json:"symbol"`
	Indicator IndicatorType    `json:"indicator"`
	// Label distinguishes multiple lines produced by one indicator,
	// e.g. "macd_signal" or "bb_upper".
	Label  string           `json:"label"`
	Points []IndicatorPoint `json:"points"`
}

// Last returns the most recent point of the series.
func (s IndicatorSeries) Last() (IndicatorPoint, bool) {
	if len(s.Points) == 0 {
		return IndicatorPoint{}, false
	}

	return s.Points[len(s.Points)-1], true
}
