package types

type IndicatorType string

const (
	IndicatorTypeSMA            IndicatorType = "sma"
	IndicatorTypeEMA            IndicatorType = "ema"
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeATR            IndicatorType = "atr"
	IndicatorTypeOBV            IndicatorType = "obv"
	IndicatorTypeMomentum       IndicatorType = "momentum"
)
