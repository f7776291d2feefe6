package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"ncmplay/internal/resolver"
	"ncmplay/internal/tagstore"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var write bool
	var force bool

	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Look up missing tags for a converted file online",
		Long: "Search by the file's title and artist, or by its file name when they are\n" +
			"missing, and show what would change. --write stores the result.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve %q: %w", args[0], err)
			}
			current, err := tagstore.Read(path)
			if err != nil {
				return err
			}

			res, cleanup, err := ctx.newResolver(cmd.Context())
			defer cleanup()
			if err != nil {
				return err
			}

			query := resolver.Query{FilenameHint: filepath.Base(path)}
			if !force {
				query.Title = current.Title
				query.Artist = current.Artist
			}
			found := res.Resolve(cmd.Context(), query)

			out := cmd.OutOrStdout()
			if found.Empty() {
				fmt.Fprintln(out, "No metadata found")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Field", "Current", "Resolved"},
				resolveRows(current, found),
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			if !write {
				return nil
			}
			if err := tagstore.Write(path, current.Merge(found)); err != nil {
				return err
			}
			fmt.Fprintf(out, "Updated tags in %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write resolved tags into the file")
	cmd.Flags().BoolVar(&force, "force", false, "Search by file name even when title and artist are set")
	return cmd
}

func resolveRows(current, found tagstore.Tags) [][]string {
	return [][]string{
		{"Title", current.Title, found.Title},
		{"Artist", current.Artist, found.Artist},
		{"Album", current.Album, found.Album},
		{"Lyrics", lyricSummary(current.Lyrics), lyricSummary(found.Lyrics)},
		{"Cover", coverSummary(current.Cover, current.CoverMIME), coverSummary(found.Cover, found.CoverMIME)},
	}
}
