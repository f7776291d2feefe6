package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ncmplay/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check directories, the search service and the lookup cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, renderSectionHeader("Configuration", colorize))
			fmt.Fprintln(out, renderStatusLine("Output directory", statusInfo, cfg.Paths.OutputDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Search service", statusInfo, cfg.Search.BaseURL, colorize))
			fmt.Fprintln(out, renderStatusLine("Resolver", statusInfo, "enabled: "+yesNo(cfg.Resolver.Enabled), colorize))
			fmt.Fprintln(out, renderStatusLine("Lookup cache", statusInfo, "enabled: "+yesNo(cfg.LookupCache.Enabled), colorize))
			fmt.Fprintln(out, renderStatusLine("Unknown artist", statusInfo, cfg.UnknownArtistLabel(), colorize))

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderSectionHeader("Preflight", colorize))
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			playlist, err := ctx.loadPlaylist()
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderSectionHeader("Library", colorize))
			kind := statusOK
			if playlist.Len() == 0 {
				kind = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("Tracks", kind, fmt.Sprintf("%d", playlist.Len()), colorize))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d preflight checks failed", len(failed))
			}
			return nil
		},
	}
}
