package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mangashelf/internal/config"
	"mangashelf/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(ctx, func(store *ledger.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						run.StartedAt.Local().Format("2006-01-02 15:04"),
						operationLabel(run),
						run.Status,
						summarizeCounts(run),
						run.Root,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Started", "Operation", "Status", "Result", "Directory"},
					rows, nil,
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show the per-file outcomes of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(ctx, func(store *ledger.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				outcomes, err := store.RunOutcomes(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:       %s\n", run.ID)
				fmt.Fprintf(out, "Operation: %s\n", operationLabel(*run))
				fmt.Fprintf(out, "Directory: %s\n", run.Root)
				fmt.Fprintf(out, "Started:   %s (%s)\n", run.StartedAt.Local().Format(time.RFC3339), humanize.Time(run.StartedAt))
				fmt.Fprintf(out, "Duration:  %s\n", run.Duration().Round(time.Millisecond))
				fmt.Fprintf(out, "Status:    %s\n", run.Status)
				if run.Error != "" {
					fmt.Fprintf(out, "Error:     %s\n", run.Error)
				}
				if run.ExportPath != "" {
					fmt.Fprintf(out, "Export:    %s\n", run.ExportPath)
				}
				fmt.Fprintf(out, "Result:    %s\n", summarizeCounts(*run))
				if len(outcomes) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(outcomes))
				for _, o := range outcomes {
					rows = append(rows, []string{o.Path, o.State, outcomeDetail(o)})
				}
				fmt.Fprintln(out, renderTable([]string{"File", "State", "Detail"}, rows, nil))
				return nil
			})
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than the given number of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return errors.New("--days must be positive")
			}
			return withLedger(ctx, func(store *ledger.Store) error {
				removed, err := store.Prune(cmd.Context(), time.Now().AddDate(0, 0, -days))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s) older than %d days\n", removed, days)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 90, "Age threshold in days")
	return cmd
}

func withLedger(ctx *commandContext, fn func(*ledger.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.Ledger.Enabled {
		return errors.New("run history is disabled (set [ledger] enabled = true)")
	}
	return openAndRun(cfg, fn)
}

func openAndRun(cfg *config.Config, fn func(*ledger.Store) error) error {
	store, err := ledger.Open(cfg)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func operationLabel(run ledger.Run) string {
	if run.DryRun {
		return run.Operation + " (dry run)"
	}
	return run.Operation
}

func summarizeCounts(run ledger.Run) string {
	c := run.Counts
	switch run.Operation {
	case "tag":
		return fmt.Sprintf("%d tagged, %d skipped, %d failed", c.Tagged, c.Skipped, c.Failed)
	case "verify":
		s := fmt.Sprintf("%d match, %d mismatch", c.Matches, c.Mismatches)
		if c.ParseErrors > 0 {
			s += ", " + strconv.Itoa(c.ParseErrors) + " unparseable"
		}
		if c.Unreadable > 0 {
			s += ", " + strconv.Itoa(c.Unreadable) + " unreadable"
		}
		return s
	case "organize":
		return fmt.Sprintf("%d moved, %d renamed, %d skipped, %d failed", c.Moved, c.Renamed, c.Skipped, c.Failed)
	default:
		return ""
	}
}

func outcomeDetail(o ledger.Outcome) string {
	switch {
	case o.Detail != "":
		return o.Detail
	case o.Target != "":
		return "-> " + o.Target
	case o.Expected != "" || o.Actual != "":
		return fmt.Sprintf("expected %s, actual %s", o.Expected, o.Actual)
	default:
		return ""
	}
}
