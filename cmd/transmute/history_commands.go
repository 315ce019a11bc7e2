package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"transmute/internal/history"
	"transmute/internal/jobs"
	"transmute/internal/profile"
	"transmute/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect finished jobs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryStatsCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var filter history.Filter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filter.State != "" && !validState(filter.State) {
				return services.Wrap(services.ErrValidation, "cli", "history list", "unknown state "+strconv.Quote(filter.State), nil)
			}
			if filter.Operation != "" {
				op, err := profile.ParseOperation(filter.Operation)
				if err != nil {
					return err
				}
				filter.Operation = string(op)
			}
			store, err := ctx.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := store.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No jobs recorded")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					shortID(e.ID),
					e.Operation,
					stateLabel(jobs.State(e.State)),
					displayName(e.Input),
					formatElapsed(e.Elapsed),
					formatWhen(e.FinishedAt),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Operation", "State", "Input", "Elapsed", "Finished"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&filter.Limit, "limit", "n", 20, "Maximum number of jobs to show (0 for all)")
	cmd.Flags().StringVar(&filter.State, "state", "", "Only show jobs in this final state")
	cmd.Flags().StringVar(&filter.Operation, "operation", "", "Only show jobs of this operation")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			entry, err := resolveEntry(cmd, store, strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:        %s\n", entry.ID)
			fmt.Fprintf(out, "Operation: %s\n", entry.Operation)
			fmt.Fprintf(out, "State:     %s\n", stateLabel(jobs.State(entry.State)))
			fmt.Fprintf(out, "Input:     %s\n", entry.Input)
			fmt.Fprintf(out, "Output:    %s\n", entry.Output)
			if entry.Encoder != "" {
				fmt.Fprintf(out, "Encoder:   %s\n", entry.Encoder)
			}
			fmt.Fprintf(out, "Started:   %s\n", entry.StartedAt.Local().Format(time.DateTime))
			fmt.Fprintf(out, "Elapsed:   %s\n", formatElapsed(entry.Elapsed))
			if entry.ExitCode != 0 {
				fmt.Fprintf(out, "Exit code: %d\n", entry.ExitCode)
			}
			if entry.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:     %s (%s)\n", entry.ErrorMessage, entry.ErrorKind)
			}
			for _, w := range entry.Warnings {
				fmt.Fprintf(out, "Warning:   %s\n", w)
			}
			return nil
		},
	}
}

// resolveEntry accepts a full ID or the short prefix shown by list.
func resolveEntry(cmd *cobra.Command, store *history.Store, id string) (*history.Entry, error) {
	entry, err := store.Get(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		return entry, nil
	}
	entries, err := store.List(cmd.Context(), history.Filter{})
	if err != nil {
		return nil, err
	}
	var matches []history.Entry
	for _, e := range entries {
		if strings.HasPrefix(e.ID, id) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return nil, services.Wrap(services.ErrValidation, "cli", "history show", "no job with id "+id, nil)
	case 1:
		return &matches[0], nil
	default:
		return nil, services.Wrap(services.ErrValidation, "cli", "history show", fmt.Sprintf("id %s is ambiguous (%d jobs)", id, len(matches)), nil)
	}
}

func newHistoryStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count jobs by final state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			states := make([]string, 0, len(stats))
			total := 0
			for state, count := range stats {
				states = append(states, state)
				total += count
			}
			slices.Sort(states)
			rows := make([][]string, 0, len(states)+1)
			for _, state := range states {
				rows = append(rows, []string{stateLabel(jobs.State(state)), humanize.Comma(int64(stats[state]))})
			}
			rows = append(rows, []string{"Total", humanize.Comma(int64(total))})
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"State", "Jobs"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete recorded jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			var removed int64
			if olderThan > 0 {
				removed, err = store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			} else {
				removed, err = store.Clear(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s job(s)\n", humanize.Comma(removed))
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Only remove jobs finished before this age (e.g. 720h)")
	return cmd
}

func validState(value string) bool {
	state := jobs.State(value)
	return state.Terminal()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
