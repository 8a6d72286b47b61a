package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	no       int
	duration string
	start    string
}

func (r *row) SetOrdinal(n int)      { r.no = n }
func (r *row) DurationText() string  { return r.duration }
func (r *row) SetStartTime(s string) { r.start = s }

func TestParseSeconds(t *testing.T) {
	testCases := []struct {
		desc   string
		in     string
		expect float64
	}{
		{desc: "integer", in: "5", expect: 5},
		{desc: "fraction", in: "12.5", expect: 12.5},
		{desc: "padded", in: " 3 ", expect: 3},
		{desc: "empty", in: "", expect: 0},
		{desc: "text", in: "abc", expect: 0},
		{desc: "negative", in: "-4", expect: 0},
		{desc: "infinity", in: "Inf", expect: 0},
		{desc: "nan", in: "NaN", expect: 0},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.expect, ParseSeconds(tC.in))
		})
	}
}

func TestSanitizeDuration(t *testing.T) {
	testCases := []struct {
		desc   string
		in     string
		expect string
	}{
		{desc: "clean", in: "12.5", expect: "12.5"},
		{desc: "letters", in: "1a2b", expect: "12"},
		{desc: "two dots", in: "1.2.3", expect: "1.23"},
		{desc: "sign", in: "-7", expect: "7"},
		{desc: "unit suffix", in: "5s", expect: "5"},
		{desc: "full width digits", in: "５", expect: ""},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.expect, SanitizeDuration(tC.in))
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	testCases := []struct {
		desc   string
		in     float64
		expect string
	}{
		{desc: "zero", in: 0, expect: "0:00"},
		{desc: "truncated", in: 12.5, expect: "0:12"},
		{desc: "minute", in: 60, expect: "1:00"},
		{desc: "float noise", in: 0.1 + 0.2 + 2.7, expect: "0:03"},
		{desc: "long", in: 3725, expect: "62:05"},
		{desc: "negative", in: -1, expect: "0:00"},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.expect, FormatSeconds(tC.in))
		})
	}
}

func TestRefresh(t *testing.T) {
	seq := []*row{{duration: "5"}, {duration: "12.5"}, {duration: "x"}, {duration: "2"}}

	Refresh(seq)

	var nos []int
	var starts []string
	for _, r := range seq {
		nos = append(nos, r.no)
		starts = append(starts, r.start)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, nos)
	assert.Equal(t, []string{"0:00", "0:05", "0:17", "0:17"}, starts)
	assert.InDelta(t, 19.5, Total(seq), 1e-9)
}

func TestRecalcEmpty(t *testing.T) {
	var seq []*row
	RecalcStartTimes(seq)
	assert.Zero(t, Total(seq))
}
