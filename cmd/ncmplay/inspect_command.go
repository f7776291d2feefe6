package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ncmplay/internal/config"
	"ncmplay/internal/lyrics"
	"ncmplay/internal/ncm"
	"ncmplay/internal/textutil"
)

func newInspectCommand() *cobra.Command {
	var coverOut string

	cmd := &cobra.Command{
		Use:         "inspect <file.ncm>",
		Short:       "Show the metadata embedded in an NCM container",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			container, err := ncm.Open(f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Field", "Value"},
				inspectRows(container),
				[]columnAlignment{alignLeft, alignLeft},
			))

			if strings.TrimSpace(coverOut) == "" {
				return nil
			}
			if len(container.Cover) == 0 {
				fmt.Fprintln(out, "No embedded cover")
				return nil
			}
			dir, err := config.ExpandPath(coverOut)
			if err != nil {
				return fmt.Errorf("resolve cover dir: %w", err)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create cover dir: %w", err)
			}
			target := filepath.Join(dir, coverFileName(args[0], container))
			if err := os.WriteFile(target, container.Cover, 0o644); err != nil {
				return fmt.Errorf("write cover: %w", err)
			}
			fmt.Fprintf(out, "Wrote cover to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&coverOut, "cover-out", "", "Directory to write the embedded cover image into")
	return cmd
}

func inspectRows(c *ncm.Container) [][]string {
	rows := [][]string{}
	if m := c.Metadata; m != nil {
		format := m.Format
		if format == "" {
			format = "(sniffed on decode)"
		}
		rows = append(rows,
			[]string{"Music ID", strconv.FormatInt(m.MusicID, 10)},
			[]string{"Title", m.Name},
			[]string{"Artists", m.ArtistNames()},
			[]string{"Album", m.Album},
			[]string{"Format", format},
			[]string{"Bitrate", strconv.FormatInt(m.Bitrate/1000, 10) + " kbps"},
			[]string{"Duration", lyrics.Format(m.DurationMS)},
		)
		if len(m.Aliases) > 0 {
			rows = append(rows, []string{"Aliases", strings.Join(m.Aliases, ", ")})
		}
	} else {
		detail := "none"
		if c.MetadataErr != nil {
			detail = "unreadable: " + c.MetadataErr.Error()
		}
		rows = append(rows, []string{"Metadata", detail})
	}
	rows = append(rows, []string{"Cover", coverSummary(c.Cover, c.CoverMIME())})
	return rows
}

func coverFileName(source string, c *ncm.Container) string {
	name := ncm.OutputStem(source)
	if c.Metadata != nil && strings.TrimSpace(c.Metadata.Name) != "" {
		name = c.Metadata.Name
		if artists := c.Metadata.ArtistNames(); artists != "" {
			name = artists + " - " + name
		}
	}
	ext := ".jpg"
	if c.CoverMIME() == "image/png" {
		ext = ".png"
	}
	return textutil.SanitizeFileName(name) + ext
}
