package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"ncmplay/internal/lyrics"
	"ncmplay/internal/playback"
)

// followTail keeps following this long after the last line when the track
// is shorter than its lyrics or its duration is unknown.
var followTail = 5 * time.Second

func newLyricsCommand(ctx *commandContext) *cobra.Command {
	var at time.Duration
	var from time.Duration
	var follow bool

	cmd := &cobra.Command{
		Use:   "lyrics <file>",
		Short: "Print the timed lyrics stored in a converted file",
		Long: "Without flags every timed line is printed. --at prints the line active at\n" +
			"a position. --follow plays the lyrics against a wall clock from --from,\n" +
			"printing each line as it becomes active.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve %q: %w", args[0], err)
			}
			tags, err := ctx.tagReader()(path)
			if err != nil {
				return err
			}
			lines := lyrics.Parse(tags.Lyrics)
			out := cmd.OutOrStdout()
			if len(lines) == 0 {
				fmt.Fprintln(out, "No lyrics")
				return nil
			}

			switch {
			case cmd.Flags().Changed("at"):
				if line, ok := lines.At(at.Milliseconds()); ok {
					fmt.Fprintln(out, formatLyricLine(line))
				} else {
					fmt.Fprintf(out, "[%s] (before first line)\n", lyrics.Format(at.Milliseconds()))
				}
				return nil
			case follow:
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}
				durationMS := int64(tags.Duration * 1000)
				return followLyrics(cmd, lines, durationMS, from.Milliseconds(), playback.NewHighlighter(logger))
			default:
				for _, line := range lines {
					fmt.Fprintln(out, formatLyricLine(line))
				}
				return nil
			}
		},
	}

	cmd.Flags().DurationVar(&at, "at", 0, "Print the line active at this position (e.g. 1m20s)")
	cmd.Flags().BoolVar(&follow, "follow", false, "Print lines in time as if the track were playing")
	cmd.Flags().DurationVar(&from, "from", 0, "Start position for --follow")
	return cmd
}

func formatLyricLine(line lyrics.Line) string {
	return fmt.Sprintf("[%s] %s", lyrics.Format(line.TimeMS), line.Text)
}

func followLyrics(cmd *cobra.Command, lines lyrics.Lines, durationMS, fromMS int64, highlighter *playback.Highlighter) error {
	endMS := durationMS
	if last := lines[len(lines)-1].TimeMS; endMS <= last {
		endMS = last + followTail.Milliseconds()
	}
	remaining := time.Duration(endMS-fromMS) * time.Millisecond
	if remaining <= 0 {
		return nil
	}

	clock := playback.NewClock(endMS, nil)
	clock.Seek(fromMS)
	clock.Play()

	runCtx, cancel := context.WithTimeout(cmd.Context(), remaining)
	defer cancel()

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	for idx := range highlighter.Run(runCtx, lines, clock, playback.DefaultInterval) {
		if idx < 0 {
			continue
		}
		fmt.Fprintln(out, highlightLine(formatLyricLine(lines[idx]), true, colorize))
	}
	if err := runCtx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
