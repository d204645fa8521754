package model

// CurrencyUSD is the original currency of every instrument the quote
// provider covers.
const CurrencyUSD = "USD"

// Indicator wraps a converted indicator value; Value is null when the
// indicator could not be computed.
type Indicator struct {
	Value *float64 `json:"value"`
}

// FxInfo exposes the rate used for the conversion.
type FxInfo struct {
	USDToEUR float64 `json:"usdToEur"`
}

// Record is the aggregated output for one instrument.
type Record struct {
	Quote            *Quote       `json:"quote"`
	PriceEUR         *float64     `json:"priceEur"`
	SMA100           Indicator    `json:"sma100"`
	SMA200           Indicator    `json:"sma200"`
	Fundamentals     Fundamentals `json:"fundamentals,omitempty"`
	CurrencyOriginal string       `json:"currencyOriginal"`
	FX               FxInfo       `json:"fx"`
}

// Snapshot maps instrument symbols to their records. Only instruments that
// were collected successfully appear in it.
type Snapshot map[string]*Record
