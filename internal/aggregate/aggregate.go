// Package aggregate collapses multiple raw readings of one logical signal
// into a single value using a declared combining rule.
package aggregate

import "fmt"

// NumericRule combines numeric readings. Boolean readings are coerced to 0/1
// by the caller before a numeric rule is applied.
type NumericRule string

const (
	Min   NumericRule = "min"
	Max   NumericRule = "max"
	Sum   NumericRule = "sum"
	Count NumericRule = "count"
	Avg   NumericRule = "avg"
)

// Valid reports whether r is a known numeric rule.
func (r NumericRule) Valid() bool {
	switch r {
	case Min, Max, Sum, Count, Avg:
		return true
	}
	return false
}

// BooleanRule combines boolean readings.
type BooleanRule string

const (
	And BooleanRule = "and"
	Or  BooleanRule = "or"
)

// Valid reports whether r is a known boolean rule.
func (r BooleanRule) Valid() bool {
	return r == And || r == Or
}

// Numeric applies rule to values. The input must be non-empty; supplying a
// default when no source has reported is the caller's job. All rules are
// order-independent.
func Numeric(rule NumericRule, values []float64) float64 {
	if len(values) == 0 {
		panic("aggregate: numeric aggregation over empty input")
	}
	switch rule {
	case Min:
		out := values[0]
		for _, v := range values[1:] {
			if v < out {
				out = v
			}
		}
		return out
	case Max:
		out := values[0]
		for _, v := range values[1:] {
			if v > out {
				out = v
			}
		}
		return out
	case Sum:
		var out float64
		for _, v := range values {
			out += v
		}
		return out
	case Count:
		return float64(len(values))
	case Avg:
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	default:
		panic(fmt.Sprintf("aggregate: unknown numeric rule %q", rule))
	}
}

// Boolean applies rule to values. The input must be non-empty.
func Boolean(rule BooleanRule, values []bool) bool {
	if len(values) == 0 {
		panic("aggregate: boolean aggregation over empty input")
	}
	switch rule {
	case And:
		for _, v := range values {
			if !v {
				return false
			}
		}
		return true
	case Or:
		for _, v := range values {
			if v {
				return true
			}
		}
		return false
	default:
		panic(fmt.Sprintf("aggregate: unknown boolean rule %q", rule))
	}
}

// CoerceBool maps a boolean reading to its numeric representation for use
// with numeric rules.
func CoerceBool(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
