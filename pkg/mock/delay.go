package mock

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// MaxDelayMs is the longest delay accepted, one day.
const MaxDelayMs = 24 * 60 * 60 * 1000

// Delay is a three-state response delay.
//
// The zero value means "not set" and lets the enclosing level decide.
// An explicit null means "use the global delay". Otherwise it holds a number of
// milliseconds; the number is kept as decoded so that invalid values (negative,
// fractional) can be reported by validation instead of failing to decode.
type Delay struct {
	set   bool
	null  bool
	value float64
}

// DelayMs returns a delay of the given number of milliseconds.
func DelayMs(ms int) Delay {
	return Delay{set: true, value: float64(ms)}
}

// DelayNull returns an explicit null delay.
func DelayNull() Delay {
	return Delay{set: true, null: true}
}

// IsZero reports whether the delay is unset.
func (d Delay) IsZero() bool {
	return !d.set
}

// IsNull reports whether the delay was explicitly set to null.
func (d Delay) IsNull() bool {
	return d.set && d.null
}

// Milliseconds returns the delay in milliseconds and whether a numeric delay is set.
func (d Delay) Milliseconds() (int, bool) {
	if !d.set || d.null {
		return 0, false
	}
	return int(d.value), true
}

// Duration returns the numeric delay as a time.Duration, or ok=false when unset or null.
func (d Delay) Duration() (time.Duration, bool) {
	ms, ok := d.Milliseconds()
	if !ok {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}

// Or returns d when it is set, otherwise fallback.
func (d Delay) Or(fallback Delay) Delay {
	if d.set {
		return d
	}
	return fallback
}

// String implements fmt.Stringer.
func (d Delay) String() string {
	switch {
	case !d.set:
		return "unset"
	case d.null:
		return "null"
	default:
		return strconv.FormatFloat(d.value, 'f', -1, 64) + "ms"
	}
}

// MarshalJSON encodes the delay as null or a number.
func (d Delay) MarshalJSON() ([]byte, error) {
	if !d.set || d.null {
		return []byte("null"), nil
	}
	if d.value == math.Trunc(d.value) {
		return []byte(strconv.FormatInt(int64(d.value), 10)), nil
	}
	return json.Marshal(d.value)
}

// UnmarshalJSON accepts null or a number.
func (d *Delay) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = DelayNull()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("delay must be a number or null: %w", err)
	}
	*d = Delay{set: true, value: v}
	return nil
}
