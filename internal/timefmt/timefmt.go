// Package timefmt renders second offsets for transcripts and estimates.
package timefmt

import (
	"fmt"
	"math"
	"strconv"
)

// Compact renders seconds as "[H.MM.SS]" when the value reaches an hour and
// "[M.SS]" otherwise. Fractions are floored.
func Compact(seconds float64) string {
	h, m, s := split(seconds)
	if h != "0" {
		return fmt.Sprintf("[%s.%02d.%02d]", h, m, s)
	}
	return fmt.Sprintf("[%d.%02d]", m, s)
}

// Clock renders seconds as "HH:MM:SS". Hours are not capped at 99.
func Clock(seconds float64) string {
	h, m, s := split(seconds)
	if len(h) < 2 {
		h = "0" + h
	}
	return fmt.Sprintf("%s:%02d:%02d", h, m, s)
}

// maxExact is 2^63, the first value int64 cannot hold.
const maxExact = float64(1 << 63)

// split floors seconds and decomposes it. Negative, NaN, and infinite inputs
// count as zero. Hours come back as decimal text so values beyond int64 keep
// their magnitude.
func split(seconds float64) (hours string, minutes, secs int64) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	total := math.Floor(seconds)
	if total < maxExact {
		n := int64(total)
		return strconv.FormatInt(n/3600, 10), (n % 3600) / 60, n % 60
	}
	rem := math.Mod(total, 3600)
	return strconv.FormatFloat(math.Floor(total/3600), 'f', 0, 64), int64(rem / 60), int64(math.Mod(rem, 60))
}
