package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"mangashelf/internal/faults"
	"mangashelf/internal/workflow"
)

func printTagResult(out io.Writer, result *workflow.Result) {
	report := result.Tagging
	_, _ = report.Log.WriteTo(out)

	c := report.Counts()
	header := "Tagging summary"
	if report.DryRun {
		header += " (dry run)"
	}
	fmt.Fprintln(out, header)
	summaryLine(out, "Tagged:", c.Tagged)
	summaryLine(out, "Skipped:", c.Skipped)
	summaryLine(out, "Failed:", c.Failed)

	if failures := report.Failures(); len(failures) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Failed files:")
		rows := make([][]string, 0, len(failures))
		for _, o := range failures {
			rows = append(rows, []string{o.Path, faults.Kind(o.Err)})
		}
		fmt.Fprintln(out, renderTable([]string{"File", "Reason"}, rows, nil))
	}
}

func printVerifyResult(out, errOut io.Writer, result *workflow.Result) {
	report := result.Verify
	_, _ = report.Log.WriteTo(out)

	if report.Untagged > 0 {
		fmt.Fprintf(out, "Untagged files ignored: %d\n", report.Untagged)
	}
	if problems := report.Problems(); len(problems) > 0 {
		fmt.Fprintln(out)
		rows := make([][]string, 0, len(problems))
		for _, p := range problems {
			rows = append(rows, []string{filepath.Base(p.Path), string(p.State), p.ExpectedText(), p.ActualText()})
		}
		fmt.Fprintln(out, renderTable([]string{"File", "State", "Expected", "Actual"}, rows, nil))
	}

	switch {
	case result.ExportErr != nil:
		fmt.Fprintf(errOut, "Export failed: %v\n", result.ExportErr)
	case result.ExportPath != "":
		fmt.Fprintf(out, "Exported problems to %s\n", result.ExportPath)
	}
}

func printOrganizeResult(out io.Writer, result *workflow.Result) {
	report := result.Organize
	_, _ = report.Log.WriteTo(out)

	if report.Plan != nil && len(report.Plan.Groups) > 0 {
		rows := make([][]string, 0, len(report.Plan.Groups))
		for _, g := range report.Plan.Groups {
			rows = append(rows, []string{g.Title, filepath.Base(g.Folder), strconv.Itoa(g.Files), yesNo(g.AllTagged)})
		}
		fmt.Fprintln(out, renderTable([]string{"Title", "Folder", "Files", "Verified"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	}

	c := report.Counts()
	header := "Organize summary"
	if report.DryRun {
		header += " (dry run)"
	}
	fmt.Fprintln(out, header)
	summaryLine(out, "Moved:", c.Moved)
	summaryLine(out, "Folders renamed:", c.Renamed)
	summaryLine(out, "Skipped:", c.Skipped)
	summaryLine(out, "Failed:", c.Failed)
	if !report.DryRun {
		summaryLine(out, "Empty folders removed:", c.Removed)
	}
}

func summaryLine(out io.Writer, label string, value int) {
	fmt.Fprintf(out, "  %-22s %d\n", label, value)
}
