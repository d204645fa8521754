package model

// Quote is a real-time quote as reported by the quote provider, in the
// instrument's original currency. Numeric fields are pointers so an absent
// value stays absent in the snapshot.
type Quote struct {
	Current       *float64 `json:"c,omitempty"`
	Change        *float64 `json:"d,omitempty"`
	ChangePercent *float64 `json:"dp,omitempty"`
	High          *float64 `json:"h,omitempty"`
	Low           *float64 `json:"l,omitempty"`
	Open          *float64 `json:"o,omitempty"`
	PrevClose     *float64 `json:"pc,omitempty"`
	Timestamp     int64    `json:"t,omitempty"`
}

// Price returns the current price and whether it is usable.
func (q *Quote) Price() (float64, bool) {
	if q == nil {
		return 0, false
	}
	return Finite(q.Current)
}

// PriceSeries holds historical closing prices, oldest first.
type PriceSeries []float64

// Fundamentals is the loosely structured company overview (Name, PERatio,
// Currency, ...). Values are kept exactly as the provider sent them.
type Fundamentals map[string]any
