package estimate

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

const durationMarker = "Duration"

var (
	secondsPerHour   = decimal.NewFromInt(3600)
	secondsPerMinute = decimal.NewFromInt(60)
)

// ParseDuration scans transcoder diagnostics for the first line containing
// "Duration" and parses the "H:MM:SS.cc" value after it.
func ParseDuration(diagnostics []byte) (float64, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(diagnostics))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, durationMarker) {
			continue
		}
		return parseDurationLine(line)
	}
	return 0, false
}

func parseDurationLine(line string) (float64, bool) {
	_, rest, found := strings.Cut(line, durationMarker+":")
	if !found {
		return 0, false
	}
	value, _, _ := strings.Cut(rest, ",")
	fields := strings.Split(strings.TrimSpace(value), ":")
	if len(fields) != 3 {
		return 0, false
	}
	parts := make([]decimal.Decimal, 3)
	for i, field := range fields {
		d, err := decimal.NewFromString(strings.TrimSpace(field))
		if err != nil || d.IsNegative() {
			return 0, false
		}
		parts[i] = d
	}
	total := parts[0].Mul(secondsPerHour).Add(parts[1].Mul(secondsPerMinute)).Add(parts[2])
	return total.InexactFloat64(), true
}
