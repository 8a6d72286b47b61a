// Package timeline derives row numbers and cumulative start times from an
// ordered sequence of durations.
package timeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Slot is one entry of an ordered sequence. The owner keeps the storage;
// the timeline only writes derived values back.
type Slot interface {
	SetOrdinal(n int)
	DurationText() string
	SetStartTime(s string)
}

// Renumber writes the 1-based index of each slot as its ordinal.
func Renumber[S Slot](seq []S) {
	for i, s := range seq {
		s.SetOrdinal(i + 1)
	}
}

// RecalcStartTimes sets each slot's start time to the running sum of the
// preceding durations.
func RecalcStartTimes[S Slot](seq []S) {
	var acc float64
	for _, s := range seq {
		s.SetStartTime(FormatSeconds(acc))
		acc += ParseSeconds(s.DurationText())
	}
}

// Refresh renumbers and recalculates in one pass order.
func Refresh[S Slot](seq []S) {
	Renumber(seq)
	RecalcStartTimes(seq)
}

// Total returns the summed duration of seq in seconds.
func Total[S Slot](seq []S) float64 {
	var acc float64
	for _, s := range seq {
		acc += ParseSeconds(s.DurationText())
	}
	return acc
}

// ParseSeconds never fails: empty, non-numeric, non-finite and negative
// values are 0.
func ParseSeconds(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// SanitizeDuration keeps ASCII digits and the first decimal point.
func SanitizeDuration(s string) string {
	var b strings.Builder
	dot := false
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == '.' && !dot:
			dot = true
			b.WriteRune(c)
		}
	}
	return b.String()
}

// FormatSeconds renders sec as m:ss with fractional seconds truncated.
func FormatSeconds(sec float64) string {
	if math.IsNaN(sec) || sec < 0 {
		sec = 0
	}
	total := int64(math.Floor(sec + 1e-9))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
