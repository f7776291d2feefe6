package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ncmplay/internal/config"
	"ncmplay/internal/pipeline"
	"ncmplay/internal/preflight"
	"ncmplay/internal/services"
	"ncmplay/internal/textutil"
)

const progressLabelWidth = 24

type convertResultJSON struct {
	Source    string `json:"source"`
	Status    string `json:"status"`
	Output    string `json:"output,omitempty"`
	Title     string `json:"title,omitempty"`
	Artist    string `json:"artist,omitempty"`
	Album     string `json:"album,omitempty"`
	Lyrics    bool   `json:"lyrics"`
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "convert <file.ncm>...",
		Short: "Decrypt NCM containers into tagged MP3/FLAC files",
		Long: "Decrypt each container into the output directory, write its embedded tags,\n" +
			"and look up missing title, artist, album, lyrics and cover online.\n" +
			"Files whose output already exists in the library are skipped.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			outputDir := cfg.Paths.OutputDir
			if strings.TrimSpace(outputFlag) != "" {
				if outputDir, err = config.ExpandPath(outputFlag); err != nil {
					return fmt.Errorf("resolve output dir: %w", err)
				}
			}
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			if check := preflight.CheckDirectoryAccess("Output directory", outputDir); !check.Passed {
				return fmt.Errorf("output directory not usable: %s", check.Detail)
			}

			paths := make([]string, 0, len(args))
			for _, arg := range args {
				abs, err := filepath.Abs(arg)
				if err != nil {
					return fmt.Errorf("resolve %q: %w", arg, err)
				}
				paths = append(paths, abs)
			}

			res, cleanup, err := ctx.newResolver(cmd.Context())
			defer cleanup()
			if err != nil {
				return err
			}

			playlist, err := ctx.loadPlaylistFrom(outputDir)
			if err != nil {
				return err
			}

			coord, err := pipeline.New(pipeline.Options{
				OutputDir:     outputDir,
				Workers:       cfg.Pipeline.Workers,
				UnknownArtist: cfg.UnknownArtistLabel(),
				Resolver:      res,
				Logger:        logger,
				Known:         playlist.ContainsOutputName,
			})
			if err != nil {
				return err
			}
			defer coord.Close()

			progress := newConvertProgress(cmd.ErrOrStderr(), len(paths))
			var results []pipeline.Result
			for result := range coord.Submit(cmd.Context(), paths) {
				if result.Track != nil {
					playlist.Add(*result.Track)
				}
				results = append(results, result)
				progress.advance(result.Source)
			}
			progress.finish()

			if jsonOutput {
				if err := writeJSON(cmd, convertResultsJSON(results)); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), renderConvertTable(results))
			}

			if failed := countFailed(results); failed > 0 {
				return fmt.Errorf("%d of %d files failed to convert", failed, len(results))
			}
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory (defaults to paths.output_dir)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	return cmd
}

func convertStatus(r pipeline.Result) string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Track == nil || services.Terminal(r.Err):
		return "failed"
	case services.Surfaced(r.Err):
		return "untagged"
	default:
		return "converted"
	}
}

func countFailed(results []pipeline.Result) int {
	n := 0
	for _, r := range results {
		if convertStatus(r) == "failed" {
			n++
		}
	}
	return n
}

func renderConvertTable(results []pipeline.Result) string {
	rows := make([][]string, 0, len(results))
	counts := map[string]int{}
	for _, r := range results {
		status := convertStatus(r)
		counts[status]++
		row := []string{filepath.Base(r.Source), status, "", "", ""}
		if r.Track != nil {
			row[2] = r.Track.FileName()
			row[3] = textutil.Truncate(r.Track.Title, 32)
			row[4] = textutil.Truncate(r.Track.Artist, 24)
		}
		if r.Err != nil && r.Track == nil {
			row[2] = textutil.Truncate(firstLine(r.Err), 48)
		}
		rows = append(rows, row)
	}
	return tableSpec{
		headers: []string{"Source", "Status", "Output", "Title", "Artist"},
		rows:    rows,
		footer: []string{
			fmt.Sprintf("%d files", len(results)),
			fmt.Sprintf("%d ok", counts["converted"]+counts["untagged"]),
			fmt.Sprintf("%d skipped, %d failed", counts["skipped"], counts["failed"]),
		},
	}.render()
}

func convertResultsJSON(results []pipeline.Result) []convertResultJSON {
	out := make([]convertResultJSON, 0, len(results))
	for _, r := range results {
		item := convertResultJSON{
			Source:    r.Source,
			Status:    convertStatus(r),
			RequestID: r.RequestID,
		}
		if r.Track != nil {
			item.Output = r.Track.Path
			item.Title = r.Track.Title
			item.Artist = r.Track.Artist
			item.Album = r.Track.Album
			item.Lyrics = r.Track.Lyrics != ""
		}
		if r.Err != nil {
			item.Error = r.Err.Error()
		}
		out = append(out, item)
	}
	return out
}

func firstLine(err error) string {
	msg := err.Error()
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) && len(joined.Unwrap()) > 1 {
		msg += " (+more)"
	}
	return msg
}

type convertProgress struct {
	bar *progressbar.ProgressBar
}

// newConvertProgress draws a per-file bar on terminals only; piped output
// stays clean.
func newConvertProgress(w io.Writer, total int) *convertProgress {
	if total < 2 || !shouldColorize(w) {
		return &convertProgress{}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(textutil.PadRight("converting", progressLabelWidth)),
	)
	return &convertProgress{bar: bar}
}

func (p *convertProgress) advance(source string) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(textutil.PadRight(filepath.Base(source), progressLabelWidth))
	_ = p.bar.Add(1)
}

func (p *convertProgress) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
