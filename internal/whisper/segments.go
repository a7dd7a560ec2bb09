package whisper

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// rawSegment mirrors one entry of the recognizer's JSON output. Times may be
// JSON numbers or quoted strings; decimal accepts both.
type rawSegment struct {
	Start decimal.Decimal `json:"start"`
	End   decimal.Decimal `json:"end"`
	Text  string          `json:"text"`
}

type rawPayload struct {
	Text     string       `json:"text"`
	Language string       `json:"language"`
	Segments []rawSegment `json:"segments"`
}

// LoadSegments reads a recognizer JSON document from disk.
func LoadSegments(jsonPath string) (Result, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return Result{}, err
	}
	return DecodeSegments(data)
}

// DecodeSegments parses recognizer JSON. Segment text is kept verbatim,
// including the leading space the model emits.
func DecodeSegments(data []byte) (Result, error) {
	var payload rawPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Result{}, fmt.Errorf("parse whisper json: %w", err)
	}
	result := Result{
		Language: payload.Language,
		Segments: make([]Segment, 0, len(payload.Segments)),
	}
	for _, seg := range payload.Segments {
		result.Segments = append(result.Segments, Segment{
			Start: seg.Start.InexactFloat64(),
			End:   seg.End.InexactFloat64(),
			Text:  seg.Text,
		})
	}
	return result, nil
}
