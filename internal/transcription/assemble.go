package transcription

import (
	"strings"

	"voicedecoder/internal/timefmt"
	"voicedecoder/internal/whisper"
)

// DefaultSilenceThreshold is the gap in seconds that starts a new paragraph.
const DefaultSilenceThreshold = 1.2

// Assemble renders segments in the order given, one line each:
//
//	<start> - <end> <text>
//
// A blank line precedes any segment that starts more than threshold seconds
// after the previous one ended. The first segment is measured from zero.
// Segment text is written verbatim.
func Assemble(segments []whisper.Segment, threshold float64) string {
	var b strings.Builder
	previousEnd := 0.0
	for _, seg := range segments {
		if seg.Start-previousEnd > threshold {
			b.WriteByte('\n')
		}
		b.WriteString(timefmt.Compact(seg.Start))
		b.WriteString(" - ")
		b.WriteString(timefmt.Compact(seg.End))
		b.WriteByte(' ')
		b.WriteString(seg.Text)
		b.WriteByte('\n')
		previousEnd = seg.End
	}
	return b.String()
}
