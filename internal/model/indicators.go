package model

import (
	"math"
	"time"
)

// Rate is the USD to EUR conversion rate of one run: 1 USD = Value EUR.
type Rate struct {
	Value      float64
	Source     string
	ResolvedAt time.Time
}

// Convert multiplies v by the rate. A nil or non-finite input yields nil,
// never zero.
func (r Rate) Convert(v *float64) *float64 {
	f, ok := Finite(v)
	if !ok {
		return nil
	}
	return Float(f * r.Value)
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Finite dereferences v and reports whether it holds a finite number.
func Finite(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}
