package main

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/spf13/cobra"

	"ncmplay/internal/library"
	"ncmplay/internal/lyrics"
)

type libraryTrackJSON struct {
	Index    int     `json:"index"`
	Path     string  `json:"path"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album,omitempty"`
	Duration float64 `json:"duration_seconds"`
	Lyrics   bool    `json:"lyrics"`
	Cover    bool    `json:"cover"`
}

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	var filter string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "library",
		Short: "List converted tracks in the output directory",
		Long: "List every MP3 and FLAC file in the output directory with its tags.\n" +
			"--filter matches \"title - artist\" case-insensitively, by full pinyin,\n" +
			"or by pinyin initials.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			playlist, err := ctx.loadPlaylist()
			if err != nil {
				return err
			}
			tracks := playlist.Tracks()
			indices := playlist.Filter(filter)

			if jsonOutput {
				out := make([]libraryTrackJSON, 0, len(indices))
				for _, i := range indices {
					t := tracks[i]
					out = append(out, libraryTrackJSON{
						Index:    i + 1,
						Path:     t.Path,
						Title:    t.Title,
						Artist:   t.Artist,
						Album:    t.Album,
						Duration: t.Duration,
						Lyrics:   t.Lyrics != "",
						Cover:    len(t.Cover) > 0,
					})
				}
				return writeJSON(cmd, out)
			}

			if len(indices) == 0 {
				if filter != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "No tracks match %q\n", filter)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Library is empty")
				}
				return nil
			}
			rows := make([][]string, 0, len(indices))
			for _, i := range indices {
				rows = append(rows, libraryRow(i, tracks[i]))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Title", "Artist", "Album", "Duration", "Lyrics"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Only list tracks matching this text")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print tracks as JSON")
	cmd.AddCommand(newLibraryQueueCommand(ctx))
	return cmd
}

func libraryRow(i int, t library.Track) []string {
	return []string{
		strconv.Itoa(i + 1),
		t.Title,
		t.Artist,
		t.Album,
		lyrics.Format(int64(t.Duration * 1000)),
		yesNo(t.Lyrics != ""),
	}
}

func newLibraryQueueCommand(ctx *commandContext) *cobra.Command {
	var modeFlag string
	var start int
	var count int
	var seed uint64

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show the order tracks would play in",
		Long: "Starting from track --start, list the tracks the player would move to as\n" +
			"each one finishes in the given mode (sequential, repeat_one, shuffle).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := library.ParseMode(modeFlag)
			if err != nil {
				return err
			}
			var opts []library.PlaylistOption
			if cmd.Flags().Changed("seed") {
				opts = append(opts, library.WithRand(rand.New(rand.NewPCG(seed, seed))))
			}
			playlist, err := ctx.loadPlaylist(opts...)
			if err != nil {
				return err
			}
			if playlist.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Library is empty")
				return nil
			}
			playlist.SetMode(mode)
			track, ok := playlist.Select(start - 1)
			if !ok {
				return fmt.Errorf("--start %d is outside 1..%d", start, playlist.Len())
			}

			rows := make([][]string, 0, count)
			for step := range count {
				_, idx, _ := playlist.Current()
				rows = append(rows, []string{strconv.Itoa(step + 1), strconv.Itoa(idx + 1), track.DisplayName()})
				if track, ok = playlist.Finished(); !ok {
					break
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mode: %s\n", playlist.Mode())
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Step", "#", "Track"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "sequential", "Playback mode")
	cmd.Flags().IntVar(&start, "start", 1, "Track number to start from")
	cmd.Flags().IntVarP(&count, "count", "n", 10, "Number of tracks to list")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for shuffle order")
	return cmd
}
