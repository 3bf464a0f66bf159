package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-webdrive-test/application"
	"github.com/bitrise-steplib/steps-webdrive-test/catalog"
	"github.com/bitrise-steplib/steps-webdrive-test/driver"
	"github.com/bitrise-steplib/steps-webdrive-test/resultsignal"
)

const defaultPollInterval = time.Second

// Config ...
type Config struct {
	BaseURL           string
	MaxRetries        int
	TestTimeout       int
	RunUnitTests      bool
	RunSuiteTests     bool
	JavaScriptEnabled bool
}

// SuiteTestsEnabled reports whether suite tests run on the registered engines.
// Enabling JavaScript on the default engine implies browser testing is wanted.
func (c Config) SuiteTestsEnabled() bool {
	return c.RunSuiteTests || c.JavaScriptEnabled
}

// ResultStore persists what the application writes into its result directory.
type ResultStore interface {
	SaveEngineResults(resultRoot, engineName string)
	WriteVerdictMarker(resultRoot string, failed bool) error
}

// Orchestrator runs the discovered tests on every engine and folds the outcomes into a Verdict.
type Orchestrator struct {
	cfg      Config
	registry driver.Registry
	store    ResultStore
	logger   log.Logger

	pollInterval time.Duration
	wait         func(ctx context.Context, d time.Duration) error
	now          func() time.Time
}

// NewOrchestrator ...
func NewOrchestrator(cfg Config, registry driver.Registry, store ResultStore, logger log.Logger) Orchestrator {
	return Orchestrator{
		cfg:          cfg,
		registry:     registry,
		store:        store,
		logger:       logger,
		pollInterval: defaultPollInterval,
		wait:         sleep,
		now:          time.Now,
	}
}

// execution holds what one Execute call shares between its engine runs.
type execution struct {
	endpoints  application.Endpoints
	resultRoot string
	signal     resultsignal.Signal
	nameWidth  int
}

// Execute runs the unit/functional batch on the default engine and the suite
// batch on every registered engine, then writes the terminal result marker.
// Errors are fatal: they come from sessions or navigation, never from test outcomes.
func (o Orchestrator) Execute(ctx context.Context, tests catalog.Catalog, signal resultsignal.Signal) (Verdict, error) {
	exec := execution{
		endpoints:  application.NewEndpoints(o.cfg.BaseURL, tests.RunnerPath),
		resultRoot: tests.ResultRoot,
		signal:     signal,
		nameWidth:  tests.LongestName(),
	}

	var verdict Verdict

	if o.cfg.RunUnitTests {
		run, err := o.runBatch(ctx, exec, o.registry.DefaultEngine(), catalog.UnitFunctional, tests.UnitTests)
		verdict = verdict.Fold(run)
		if err != nil {
			return verdict, err
		}
	}

	if o.cfg.SuiteTestsEnabled() {
		for _, engine := range o.registry.EngineTypes() {
			run, err := o.runBatch(ctx, exec, engine, catalog.SuiteDriven, tests.SuiteTests)
			verdict = verdict.Fold(run)
			if err != nil {
				return verdict, err
			}
		}
	}

	if err := o.store.WriteVerdictMarker(tests.ResultRoot, verdict.Failed); err != nil {
		return verdict, fmt.Errorf("failed to write result marker: %w", err)
	}

	return verdict, nil
}

// runBatch retries the failing subset of a batch until it passes or the retry
// ceiling is reached. Attempts are numbered from 0; attempt k+1 only runs the
// tests that failed in attempt k, on a fresh session.
func (o Orchestrator) runBatch(ctx context.Context, exec execution, engine driver.EngineType, kind catalog.Kind, tests []catalog.TestID) (EngineRun, error) {
	run := EngineRun{Engine: engine, Kind: kind, Tests: len(tests)}
	if len(tests) == 0 {
		o.logger.Println()
		o.logger.Infof("No %s tests to run with the %s engine", kind, engine.Name)
		return run, nil
	}

	pending := tests
	for attempt := 0; ; attempt++ {
		result, err := o.runAttempt(ctx, exec, engine, pending, attempt)
		run.Attempts = append(run.Attempts, result)
		run.Failed = result.Failed
		if err != nil {
			return run, err
		}

		o.store.SaveEngineResults(exec.resultRoot, engine.Name)

		if len(result.Failed) == 0 || attempt >= o.cfg.MaxRetries {
			return run, nil
		}
		pending = result.Failed
	}
}

// runAttempt drives one session through init, every test of the batch and end.
// The session is released on every path; a failing release is returned
// together with the computed result.
func (o Orchestrator) runAttempt(ctx context.Context, exec execution, engine driver.EngineType, tests []catalog.TestID, attempt int) (result AttemptResult, err error) {
	o.logger.Println()
	o.logger.Infof("Starting tests with the %s engine", engine.Name)
	o.logger.Printf("Attempt %d / %d", attempt+1, o.cfg.MaxRetries+1)

	result = AttemptResult{Attempt: attempt}

	session, err := o.registry.NewSession(ctx, engine)
	if err != nil {
		return result, err
	}
	defer func() {
		if quitErr := session.Quit(); quitErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to stop the %s engine: %w", engine.Name, quitErr))
		}
	}()

	if err := session.Configure(engine.Options); err != nil {
		return result, fmt.Errorf("failed to configure the %s engine: %w", engine.Name, err)
	}

	if err := session.Navigate(exec.endpoints.InitURL()); err != nil {
		return result, err
	}

	for _, test := range tests {
		testResult, err := o.runTest(ctx, exec, session, test)
		if err != nil {
			return result, err
		}

		result.Results = append(result.Results, testResult)
		if testResult.Outcome != Passed {
			result.Failed = append(result.Failed, test)
		}
	}

	if err := session.Navigate(exec.endpoints.EndURL(len(result.Failed) > 0)); err != nil {
		return result, err
	}

	return result, nil
}

func (o Orchestrator) runTest(ctx context.Context, exec execution, session driver.Session, test catalog.TestID) (TestResult, error) {
	start := o.now()

	if err := session.Navigate(exec.endpoints.TestURL(test)); err != nil {
		return TestResult{Test: test}, err
	}

	outcome, err := o.poll(ctx, exec.signal, test)
	if err != nil {
		return TestResult{Test: test}, err
	}

	result := TestResult{
		Test:     test,
		Outcome:  outcome,
		Duration: o.now().Sub(start),
	}
	o.logger.Printf("%s", formatProgressLine(result, exec.nameWidth))

	return result, nil
}

// poll checks the result markers up to TestTimeout times, waiting one poll
// interval between unresolved checks. Passed wins if both markers exist.
func (o Orchestrator) poll(ctx context.Context, signal resultsignal.Signal, test catalog.TestID) (Outcome, error) {
	for i := 0; i < o.cfg.TestTimeout; i++ {
		if signal.Exists(test, resultsignal.Passed) {
			return Passed, nil
		}
		if signal.Exists(test, resultsignal.Failed) {
			return Failed, nil
		}

		if i == o.cfg.TestTimeout-1 {
			break
		}
		if err := o.wait(ctx, o.pollInterval); err != nil {
			return TimedOut, err
		}
	}
	return TimedOut, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
