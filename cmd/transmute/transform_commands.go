package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"transmute/internal/engine"
	"transmute/internal/jobs"
	"transmute/internal/logging"
	"transmute/internal/media"
	"transmute/internal/preflight"
	"transmute/internal/profile"
	"transmute/internal/services"
)

func newTransformCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newConvertCommand(ctx),
		newMuteCommand(ctx),
		newResizeCommand(ctx),
		newCompressCommand(ctx),
	}
}

type transformFlags struct {
	output string
	reveal bool
}

func (f *transformFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output path (single input only; derived from the input by default)")
	cmd.Flags().BoolVar(&f.reveal, "reveal", false, "Show the finished file in the file manager")
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var flags transformFlags
	var target string

	cmd := &cobra.Command{
		Use:   "convert <input>... --to <format>",
		Short: "Convert files to another format",
		Long:  "Convert files to another container or codec family.\n\nSuggested targets:\n" + targetsHelp(),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(target) == "" && strings.TrimSpace(flags.output) == "" {
				return services.Wrap(services.ErrValidation, "cli", "convert", "--to or --output is required", nil)
			}
			return runTransform(cmd, ctx, args, jobs.Spec{Operation: profile.OpConvert, Target: target}, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&target, "to", "t", "", "Target format extension, e.g. mp3 or webp")
	return cmd
}

func newMuteCommand(ctx *commandContext) *cobra.Command {
	var flags transformFlags
	cmd := &cobra.Command{
		Use:   "mute <input>...",
		Short: "Silence the audio of video or audio files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, ctx, args, jobs.Spec{Operation: profile.OpMute}, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newResizeCommand(ctx *commandContext) *cobra.Command {
	var flags transformFlags
	var scale float64
	cmd := &cobra.Command{
		Use:   "resize <image>...",
		Short: "Scale images by a factor",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, ctx, args, jobs.Spec{
				Operation: profile.OpResize,
				Params:    profile.Params{ScaleFactor: scale},
			}, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().Float64VarP(&scale, "scale", "s", 0.5, fmt.Sprintf("Scale factor in (0, %g]", profile.MaxScaleFactor))
	return cmd
}

func newCompressCommand(ctx *commandContext) *cobra.Command {
	var flags transformFlags
	var sizeMB float64
	cmd := &cobra.Command{
		Use:   "compress <input>... --size <MB>",
		Short: "Re-encode audio or video to fit under a size ceiling",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, ctx, args, jobs.Spec{
				Operation: profile.OpCompress,
				Params:    profile.Params{TargetMB: sizeMB},
			}, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().Float64Var(&sizeMB, "size", 0, "Target size in megabytes (MiB)")
	_ = cmd.MarkFlagRequired("size")
	return cmd
}

func targetsHelp() string {
	var b strings.Builder
	for _, kind := range []media.Kind{media.KindVideo, media.KindAudio, media.KindImage} {
		targets := media.Targets(kind)
		for i, t := range targets {
			targets[i] = strings.TrimPrefix(t, ".")
		}
		fmt.Fprintf(&b, "  %-6s %s\n", kind.String()+":", strings.Join(targets, " "))
	}
	return b.String()
}

func runTransform(cmd *cobra.Command, cc *commandContext, inputs []string, template jobs.Spec, flags transformFlags) error {
	if flags.output != "" && len(inputs) > 1 {
		return services.Wrap(services.ErrValidation, "cli", string(template.Operation), "--output requires a single input", nil)
	}
	template.Output = flags.output

	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	controller, logger, err := cc.newController(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if failed := preflight.Failed(preflight.RunAll(ctx, cfg)); len(failed) > 0 {
		first := failed[0]
		return services.Wrap(services.ErrConfiguration, "cli", "preflight", first.Name+": "+first.Detail+" (run transmute doctor)", nil)
	}

	revealOutput := cfg.Output.Reveal
	if cmd.Flags().Changed("reveal") {
		revealOutput = flags.reveal
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	var display progressDisplay
	summary := controller.RunBatch(ctx, inputs, template, jobs.BatchCallbacks{
		OnItemStart: func(index, total int, input string) {
			label := filepath.Base(input)
			if total > 1 {
				label = fmt.Sprintf("[%d/%d] %s", index, total, label)
			}
			display = newProgressDisplay(errOut, label)
		},
		Job: jobs.Callbacks{
			OnProgress: func(pct int) { display.update(pct) },
			OnCompletion: func(result jobs.Result) {
				display.finish(result.State == jobs.StateSucceeded)
			},
		},
	})

	// A single rejected input is reported as the command error.
	if len(summary.Items) == 1 && summary.Items[0].Result.ID == "" && summary.Items[0].Err != nil {
		return summary.Items[0].Err
	}

	revealer := cc.revealer(logger)
	for _, item := range summary.Items {
		printItem(out, item)
		if revealOutput && item.Result.State == jobs.StateSucceeded {
			if err := revealer.Reveal(ctx, item.Result.Output); err != nil {
				logging.WarnWithContext(logger, "could not reveal output", "reveal_failed",
					logging.String("output", item.Result.Output),
					logging.Error(err),
					logging.String(logging.FieldImpact, "output was written but not shown"),
				)
			}
		}
	}
	if len(summary.Items) > 1 {
		fmt.Fprintf(out, "\n%d succeeded, %d failed, %d cancelled, %d skipped\n",
			summary.Succeeded, summary.Failed, summary.Cancelled, summary.Skipped)
	}

	if summary.Cancelled > 0 || summary.Skipped > 0 {
		return errCancelled
	}
	if summary.Failed > 0 {
		return &jobsFailedError{failed: summary.Failed, total: len(summary.Items)}
	}
	return nil
}

func printItem(out io.Writer, item jobs.BatchItem) {
	name := filepath.Base(item.Input)
	switch {
	case item.Skipped:
		fmt.Fprintf(out, "- %s: skipped\n", name)
		return
	case item.Result.ID == "":
		fmt.Fprintf(out, "✗ %s: %v\n", name, item.Err)
		return
	}

	result := item.Result
	switch result.State {
	case jobs.StateSucceeded:
		detail := formatElapsed(result.Elapsed)
		if info, err := os.Stat(result.Output); err == nil {
			detail += ", " + humanize.IBytes(uint64(info.Size()))
		}
		fmt.Fprintf(out, "✓ %s → %s (%s)\n", name, result.Output, detail)
	case jobs.StateCancelled:
		fmt.Fprintf(out, "- %s: %s\n", name, stateLabel(result.State))
	default:
		fmt.Fprintf(out, "✗ %s: %v\n", name, result.Err)
		var exitErr *engine.ExitError
		if errors.As(result.Err, &exitErr) && exitErr.Hint != "" {
			fmt.Fprintf(out, "  hint: %s\n", exitErr.Hint)
		}
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "  warning: %v\n", w)
	}
}
