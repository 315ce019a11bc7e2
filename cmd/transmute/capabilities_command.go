package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"transmute/internal/capability"
	"transmute/internal/logging"
)

func newCapabilitiesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Show the hardware acceleration class compress will use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			detector := ctx.capabilityDetector(logger)
			class := detector.Detect(cmd.Context())
			source := detector.Source()
			if source == "" {
				source = "no evidence"
			}

			fmt.Fprintln(out, renderSectionHeader("Acceleration", colorize))
			kind := statusInfo
			if class.Accelerated() {
				kind = statusOK
			}
			fmt.Fprintln(out, renderStatusLine("Class", kind, fmt.Sprintf("%s (%s)", class, source), colorize))

			adapters, err := capability.Adapters(cmd.Context())
			switch {
			case err != nil:
				fmt.Fprintln(out, renderStatusLine("Adapters", statusWarn, err.Error(), colorize))
			case len(adapters) == 0:
				fmt.Fprintln(out, renderStatusLine("Adapters", statusInfo, "none found", colorize))
			default:
				fmt.Fprintln(out, renderStatusLine("Adapters", statusInfo, strings.Join(adapters, "; "), colorize))
			}

			summary, err := capability.Host(cmd.Context())
			if err != nil {
				logger.Debug("host summary incomplete", logging.Error(err))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderSectionHeader("Host", colorize))
			platform := strings.TrimSpace(summary.Platform + " " + summary.PlatformVersion)
			if platform == "" {
				platform = summary.OS
			}
			fmt.Fprintln(out, renderStatusLine("Platform", statusInfo, platform+" "+summary.Arch, colorize))
			if summary.CPUModel != "" {
				fmt.Fprintln(out, renderStatusLine("CPU", statusInfo, fmt.Sprintf("%s (%d threads)", summary.CPUModel, summary.LogicalCPUs), colorize))
			}
			if summary.MemoryBytes > 0 {
				fmt.Fprintln(out, renderStatusLine("Memory", statusInfo, humanize.IBytes(summary.MemoryBytes), colorize))
			}
			return nil
		},
	}
}
