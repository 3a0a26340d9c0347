package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mangashelf/internal/config"
	"mangashelf/internal/deps"
	"mangashelf/internal/ledger"
	"mangashelf/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check configuration, directories, and external tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			p := newStatusPrinter(cmd.OutOrStdout())

			p.section("Configuration")
			configPath := ctx.configPath
			if configPath == "" {
				configPath = "(defaults)"
			}
			p.line("Config file", statusInfo, configPath)
			p.line("Tag format", statusInfo, fmt.Sprintf("%s (legacy decoding %s)", cfg.Tagging.Format, enabledLabel(cfg.Tagging.AcceptLegacy)))
			p.line("Folder scheme", statusInfo, cfg.Organize.FolderScheme)
			p.line("Extensions", statusInfo, strings.Join(cfg.Scan.Extensions, " "))
			p.line("Notifications", statusInfo, notificationLabel(cfg.Notifications.NtfyTopic))

			p.section("Dependencies")
			statuses := preflight.CheckSystemDeps(cfg)
			for _, s := range statuses {
				kind, msg := dependencyStatus(s)
				p.line(s.Name, kind, msg)
			}

			p.section("Paths")
			for _, r := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				p.line(r.Name, kind, r.Detail)
			}

			if msg, ok := lastRunSummary(cmd, cfg); ok {
				p.section("History")
				p.line("Last run", statusInfo, msg)
			}

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\nMissing required tools: %s\n", strings.Join(missing, ", "))
			}
			if p.errors > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d check(s) failed\n", p.errors)
			}
			return nil
		},
	}
}

func dependencyStatus(s deps.Status) (statusKind, string) {
	switch {
	case s.Available:
		return statusOK, s.Path
	case s.Optional:
		return statusWarn, s.Detail
	default:
		return statusError, fmt.Sprintf("%s (%s)", s.Detail, s.Description)
	}
}

func lastRunSummary(cmd *cobra.Command, cfg *config.Config) (string, bool) {
	if !cfg.Ledger.Enabled {
		return "", false
	}
	store, err := ledger.OpenPath(cfg.Ledger.Path)
	if err != nil {
		return "", false
	}
	defer store.Close()
	runs, err := store.ListRuns(cmd.Context(), 1)
	if err != nil || len(runs) == 0 {
		return "", false
	}
	run := runs[0]
	return fmt.Sprintf("%s %s, %s (%s)", operationLabel(run), run.Status, summarizeCounts(run), humanize.Time(run.FinishedAt)), true
}

func notificationLabel(topic string) string {
	if topic == "" {
		return "disabled"
	}
	return topic
}
