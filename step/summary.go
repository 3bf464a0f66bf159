package step

import (
	"fmt"
	"time"

	"github.com/bitrise-steplib/steps-webdrive-test/orchestrator"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// FormatSummary renders one row per engine run of the result.
func FormatSummary(result Result) string {
	t := table.NewWriter()
	t.SetTitle("Test run %s", result.RunID)

	t.AppendHeader(table.Row{
		"Engine", "Tests", "Attempts", "Failed", "Duration", "Status",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Attempts", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
	})

	var total time.Duration
	for _, run := range result.Verdict.Runs {
		duration := runDuration(run)
		total += duration

		t.AppendRow(table.Row{
			fmt.Sprintf("%s (%s)", run.Engine.Name, run.Kind),
			run.Tests,
			len(run.Attempts),
			len(run.Failed),
			orchestrator.FormatDuration(duration),
			runStatus(run),
		})
	}

	overallStatus := "PASS"
	if result.Verdict.Failed {
		overallStatus = "FAIL"
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL", "", "", "", orchestrator.FormatDuration(total), overallStatus,
	})

	return t.Render()
}

func runStatus(run orchestrator.EngineRun) string {
	switch {
	case len(run.Attempts) == 0:
		return "SKIP"
	case run.PermanentlyFailed():
		return "FAIL"
	default:
		return "PASS"
	}
}

func runDuration(run orchestrator.EngineRun) time.Duration {
	var d time.Duration
	for _, attempt := range run.Attempts {
		for _, test := range attempt.Results {
			d += test.Duration
		}
	}
	return d
}
