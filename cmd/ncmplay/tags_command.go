package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"ncmplay/internal/lyrics"
	"ncmplay/internal/tagstore"
	"ncmplay/internal/textutil"
)

type tagsJSON struct {
	Path      string  `json:"path"`
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	Album     string  `json:"album,omitempty"`
	Duration  float64 `json:"duration_seconds"`
	Lyrics    string  `json:"lyrics,omitempty"`
	CoverMIME string  `json:"cover_mime,omitempty"`
	CoverSize int     `json:"cover_bytes"`
}

func newTagsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "tags <file>",
		Short: "Show the tags of a converted MP3 or FLAC file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve %q: %w", args[0], err)
			}
			tags, err := ctx.tagReader()(path)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, tagsJSON{
					Path:      path,
					Title:     tags.Title,
					Artist:    tags.Artist,
					Album:     tags.Album,
					Duration:  tags.Duration,
					Lyrics:    tags.Lyrics,
					CoverMIME: tags.CoverMIME,
					CoverSize: len(tags.Cover),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				tagRows(tags),
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print tags as JSON")
	return cmd
}

func tagRows(tags tagstore.Tags) [][]string {
	return [][]string{
		{"Title", tags.Title},
		{"Artist", tags.Artist},
		{"Album", tags.Album},
		{"Duration", lyrics.Format(int64(tags.Duration * 1000))},
		{"Lyrics", lyricSummary(tags.Lyrics)},
		{"Cover", coverSummary(tags.Cover, tags.CoverMIME)},
	}
}

func lyricSummary(raw string) string {
	lines := lyrics.Parse(raw)
	if len(lines) == 0 {
		if raw != "" {
			return "present, no timed lines"
		}
		return "none"
	}
	return fmt.Sprintf("%d lines, first: %s", len(lines), textutil.Truncate(lines[0].Text, 30))
}

func coverSummary(cover []byte, mime string) string {
	if len(cover) == 0 {
		return "none"
	}
	if mime == "" {
		mime = tagstore.ImageMIME(cover)
	}
	return fmt.Sprintf("%s, %d bytes", mime, len(cover))
}
