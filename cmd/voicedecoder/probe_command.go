package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"voicedecoder/internal/language"
	"voicedecoder/internal/media/ffprobe"
	"voicedecoder/internal/media/normalize"
	"voicedecoder/internal/timefmt"
)

type probeOutput struct {
	Input          string           `json:"input"`
	Category       string           `json:"category"`
	Format         string           `json:"format"`
	Duration       float64          `json:"duration_seconds"`
	FFmpegDuration *float64         `json:"ffmpeg_duration_seconds,omitempty"`
	SizeBytes      int64            `json:"size_bytes"`
	Streams        []ffprobe.Stream `json:"streams"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "List the media streams in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			path := args[0]

			result, err := ffprobe.Inspect(cmd.Context(), cfg.Tools.FFprobe, path)
			if err != nil {
				return err
			}
			ref := normalize.Resolve(path, cfg.Transcription.DirectFormats)
			category := "needs conversion"
			if ref.Direct() {
				category = "direct"
			}

			var ffmpegDuration *float64
			if seconds, ok := ctx.estimator(nil).ProbeDuration(cmd.Context(), path); ok {
				ffmpegDuration = &seconds
			}

			if asJSON {
				return writeJSON(cmd, probeOutput{
					Input:          path,
					Category:       category,
					Format:         result.Format.FormatName,
					Duration:       result.DurationSeconds(),
					FFmpegDuration: ffmpegDuration,
					SizeBytes:      result.SizeBytes(),
					Streams:        result.Streams,
				})
			}

			out := cmd.OutOrStdout()
			format := result.Format.LongName
			if format == "" {
				format = result.Format.FormatName
			}
			fmt.Fprintf(out, "Format:   %s (%s)\n", format, category)
			fmt.Fprintf(out, "Duration: %s\n", timefmt.Clock(result.DurationSeconds()))
			if ffmpegDuration != nil {
				fmt.Fprintf(out, "Estimator duration: %s\n", timefmt.Clock(*ffmpegDuration))
			}
			fmt.Fprintf(out, "Audio streams: %d, video streams: %d\n", result.AudioStreamCount(), result.VideoStreamCount())
			fmt.Fprintln(out, renderStreamTable(result.Streams))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the probe result as JSON")
	return cmd
}

func renderStreamTable(streams []ffprobe.Stream) string {
	rows := make([][]string, 0, len(streams))
	for _, s := range streams {
		channels := ""
		if s.Channels > 0 {
			channels = strconv.Itoa(s.Channels)
			if s.ChannelLayout != "" {
				channels += " (" + s.ChannelLayout + ")"
			}
		}
		lang := ""
		if code := s.Language(); code != "" {
			lang = language.DisplayName(code)
		}
		rows = append(rows, []string{
			strconv.Itoa(s.Index),
			strings.ToLower(s.CodecType),
			s.CodecName,
			lang,
			channels,
			s.SampleRate,
		})
	}
	return renderTable(
		[]string{"#", "Type", "Codec", "Language", "Channels", "Sample rate"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}
