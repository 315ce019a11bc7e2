package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"transmute/internal/preflight"
	"transmute/internal/services"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories and external tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, renderSectionHeader("Configuration", colorize))
			configLine := ctx.configPath
			if !ctx.configExists {
				configLine += " (not found, using defaults)"
			}
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, configLine, colorize))
			fmt.Fprintln(out)

			fmt.Fprintln(out, renderSectionHeader("Checks", colorize))
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return services.Wrap(services.ErrConfiguration, "cli", "doctor", fmt.Sprintf("%d check(s) failed", len(failed)), nil)
			}
			return nil
		},
	}
}
