package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mangashelf/internal/workflow"
)

func newTagCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "tag [DIR]",
		Short: "Embed checksum tags in archives that pass the integrity test",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, ctx, workflow.Request{
				Operation: workflow.OpTag,
				Directory: firstArg(args),
				DryRun:    dryRun,
			})
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Compute and test without renaming")
	return cmd
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var exportPath string
	cmd := &cobra.Command{
		Use:   "verify [DIR]",
		Short: "Recompute checksums and compare them with embedded tags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, ctx, workflow.Request{
				Operation:  workflow.OpVerify,
				Directory:  firstArg(args),
				ExportPath: exportPath,
			})
		},
	}
	cmd.Flags().StringVarP(&exportPath, "export", "e", "", "Write mismatches and unparseable tags to this file")
	return cmd
}

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "organize [DIR]",
		Short: "Move archives into one folder per title",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, ctx, workflow.Request{
				Operation: workflow.OpOrganize,
				Directory: firstArg(args),
				DryRun:    dryRun,
			})
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the plan without moving anything")
	return cmd
}

func runOperation(cmd *cobra.Command, ctx *commandContext, req workflow.Request) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger := ctx.loggerFor(cfg)

	store, err := ctx.openLedger(cfg)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()

	progress := newProgressReporter(cmd.ErrOrStderr())
	runner, err := workflow.NewRunner(cfg, logger,
		workflow.WithLedger(store),
		workflow.WithProgress(progress.callback()),
	)
	if err != nil {
		return err
	}

	result, runErr := runner.Run(cmd.Context(), req)
	progress.finish()
	if result != nil {
		printResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), result)
	}
	return runErr
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func printResult(out, errOut io.Writer, result *workflow.Result) {
	switch {
	case result.Tagging != nil:
		printTagResult(out, result)
	case result.Verify != nil:
		printVerifyResult(out, errOut, result)
	case result.Organize != nil:
		printOrganizeResult(out, result)
	}
	if result.RunID != "" {
		fmt.Fprintf(out, "Run ID: %s\n", result.RunID)
	}
}
