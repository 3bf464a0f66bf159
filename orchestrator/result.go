package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/bitrise-io/go-utils/colorstring"
	"github.com/bitrise-steplib/steps-webdrive-test/catalog"
	"github.com/bitrise-steplib/steps-webdrive-test/driver"
)

// Outcome ...
type Outcome int

// Outcomes ...
const (
	Passed Outcome = iota
	Failed
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "PASSED"
	case Failed:
		return "FAILED"
	case TimedOut:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// TestResult ...
type TestResult struct {
	Test     catalog.TestID
	Outcome  Outcome
	Duration time.Duration
}

// AttemptResult ...
type AttemptResult struct {
	Attempt int
	Results []TestResult
	Failed  []catalog.TestID
}

// EngineRun is the retry chain of one batch on one engine. Failed holds the
// tests still failing after the last attempt.
type EngineRun struct {
	Engine   driver.EngineType
	Kind     catalog.Kind
	Tests    int
	Attempts []AttemptResult
	Failed   []catalog.TestID
}

// PermanentlyFailed ...
func (r EngineRun) PermanentlyFailed() bool {
	return len(r.Failed) > 0
}

// Verdict is the logical OR of every engine run's permanent failure.
type Verdict struct {
	Failed bool
	Runs   []EngineRun
}

// Fold ...
func (v Verdict) Fold(run EngineRun) Verdict {
	return Verdict{
		Failed: v.Failed || run.PermanentlyFailed(),
		Runs:   append(append([]EngineRun{}, v.Runs...), run),
	}
}

func formatProgressLine(result TestResult, nameWidth int) string {
	var status string
	switch result.Outcome {
	case Passed:
		status = colorstring.Green("PASSED      ")
	case Failed:
		status = colorstring.Red("FAILED   !  ")
	default:
		status = colorstring.Yellow("TIMEOUT  ?  ")
	}

	padding := ""
	if n := nameWidth - len(result.Test.Name); n > 0 {
		padding = strings.Repeat(" ", n)
	}

	return fmt.Sprintf("%s... %s    %s%s", result.Test.Name, padding, status, FormatDuration(result.Duration))
}

// FormatDuration prints whole minutes and seconds, like "1 min 5s" or "42s".
func FormatDuration(d time.Duration) string {
	seconds := int(d/time.Second) % 60
	minutes := int(d/time.Minute) % 60
	if minutes > 0 {
		return fmt.Sprintf("%d min %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
