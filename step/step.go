package step

import (
	"context"
	"fmt"
	"time"

	"github.com/bitrise-io/go-utils/retry"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/steps-webdrive-test/application"
	"github.com/bitrise-steplib/steps-webdrive-test/driver"
	"github.com/bitrise-steplib/steps-webdrive-test/orchestrator"
	"github.com/bitrise-steplib/steps-webdrive-test/output"
	"github.com/bitrise-steplib/steps-webdrive-test/resultsignal"
	"github.com/google/uuid"
	"github.com/hashicorp/go-version"
)

// Result ...
type Result struct {
	RunID      string
	DeployDir  string
	ResultRoot string
	Verdict    orchestrator.Verdict
}

// EngineNames lists every engine that completed at least one attempt, in run order.
func (r Result) EngineNames() []string {
	var names []string
	seen := map[string]bool{}
	for _, run := range r.Verdict.Runs {
		if len(run.Attempts) == 0 || seen[run.Engine.Name] {
			continue
		}
		seen[run.Engine.Name] = true
		names = append(names, run.Engine.Name)
	}
	return names
}

// ExitCode is the process exit status of a run: 1 when the run or the
// export failed or any test failed permanently, 0 otherwise.
func ExitCode(result Result, runErr, exportErr error) int {
	if runErr != nil || exportErr != nil || result.Verdict.Failed {
		return 1
	}
	return 0
}

// WebdriveTestRunner ...
type WebdriveTestRunner struct {
	logger         log.Logger
	versionChecker driver.VersionChecker
	outputExporter output.Exporter
	pathChecker    pathutil.PathChecker
	pathProvider   pathutil.PathProvider
	fileManager    fileutil.FileManager
}

// NewWebdriveTestRunner ...
func NewWebdriveTestRunner(logger log.Logger, versionChecker driver.VersionChecker, outputExporter output.Exporter, pathChecker pathutil.PathChecker, pathProvider pathutil.PathProvider, fileManager fileutil.FileManager) WebdriveTestRunner {
	return WebdriveTestRunner{
		logger:         logger,
		versionChecker: versionChecker,
		outputExporter: outputExporter,
		pathChecker:    pathChecker,
		pathProvider:   pathProvider,
		fileManager:    fileManager,
	}
}

// InstallDeps checks that every browser the run needs is installed and recent enough.
func (r WebdriveTestRunner) InstallDeps(config Config) error {
	for _, engine := range usedEngines(config) {
		if !driver.IsBrowserEngine(engine) {
			continue
		}

		browser := config.Browsers[engine]
		var browserVersion *version.Version
		err := retry.Times(2).Wait(time.Second).Try(func(attempt uint) error {
			if attempt > 0 {
				r.logger.Warnf("Retrying %s version check (attempt %d)", engine, attempt)
			}

			v, err := r.versionChecker.BrowserVersion(browser)
			if err != nil {
				r.logger.Warnf("%s", err)
				return err
			}
			browserVersion = v
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to get %s version: %w", engine, err)
		}

		r.logger.Printf("- %s version: %s", engine, browserVersion)

		if err := driver.CheckMinimumVersion(engine, browserVersion); err != nil {
			return err
		}
	}
	return nil
}

// Run discovers the tests of the application and runs them on the configured engines.
func (r WebdriveTestRunner) Run(ctx context.Context, config Config) (Result, error) {
	result := Result{
		RunID:     uuid.New().String(),
		DeployDir: config.DeployDir,
	}

	r.logger.Println()
	r.logger.Infof("Discovering tests of %s", config.AppURL)

	client := application.NewClient(config.AppURL, config.DiscoveryRetries, r.logger)
	tests, err := client.Discover(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to retrieve the list of tests: %w", err)
	}
	result.ResultRoot = tests.ResultRoot

	if config.ShutdownApplication {
		defer r.shutdownApplication(ctx, client)
	}

	registry, err := r.newRegistry(config)
	if err != nil {
		return result, err
	}

	runner := orchestrator.NewOrchestrator(orchestrator.Config{
		BaseURL:           config.AppURL,
		MaxRetries:        config.MaxRetries,
		TestTimeout:       config.TestTimeout,
		RunUnitTests:      config.RunUnitTests,
		RunSuiteTests:     config.RunSuiteTests,
		JavaScriptEnabled: config.JavaScriptEnabled,
	}, registry, r.outputExporter, r.logger)
	signal := resultsignal.NewMarkerFileSignal(tests.ResultRoot, r.pathChecker, r.logger)

	verdict, err := runner.Execute(ctx, tests, signal)
	result.Verdict = verdict

	r.logger.Println()
	r.logger.Printf("%s", FormatSummary(result))

	if err != nil {
		return result, err
	}

	if verdict.Failed {
		r.logger.Errorf("Some tests failed")
	} else {
		r.logger.Donef("All tests passed")
	}
	return result, nil
}

// Export ...
func (r WebdriveTestRunner) Export(result Result, testFailed bool) error {
	r.logger.Println()
	r.logger.Infof("Export outputs")

	r.outputExporter.ExportTestRunResult(testFailed)

	if result.ResultRoot == "" {
		return nil
	}

	r.outputExporter.ExportResultsArchive(result.DeployDir, result.ResultRoot)
	r.outputExporter.ExportTestAddonResults(result.ResultRoot, result.EngineNames())

	return nil
}

func (r WebdriveTestRunner) shutdownApplication(ctx context.Context, client application.Client) {
	r.logger.Println()
	r.logger.Infof("Stopping the application")

	if err := client.Kill(context.WithoutCancel(ctx)); err != nil {
		r.logger.Warnf("Failed to stop the application: %s", err)
	}
}

func (r WebdriveTestRunner) newRegistry(config Config) (driver.Registry, error) {
	factories := map[string]driver.Factory{
		driver.HTTPEngine: driver.NewHTTPFactory(r.logger),
	}
	for name, browser := range config.Browsers {
		factories[name] = driver.NewBrowserFactory(browser, r.logger, r.pathProvider, r.fileManager)
	}

	defaultEngine := driver.EngineType{
		Name:    config.DefaultEngine,
		Options: driver.Options{JavaScriptEnabled: config.JavaScriptEnabled},
	}

	var engines []driver.EngineType
	for _, name := range config.Engines {
		engines = append(engines, driver.EngineType{
			Name:    name,
			Options: driver.Options{JavaScriptEnabled: driver.IsBrowserEngine(name) || config.JavaScriptEnabled},
		})
	}

	return driver.NewRegistry(defaultEngine, engines, factories)
}

// usedEngines lists the engines the enabled test batches run on.
func usedEngines(config Config) []string {
	var engines []string
	seen := map[string]bool{}
	add := func(engine string) {
		if !seen[engine] {
			seen[engine] = true
			engines = append(engines, engine)
		}
	}

	if config.RunUnitTests {
		add(config.DefaultEngine)
	}
	if config.RunSuiteTests || config.JavaScriptEnabled {
		for _, engine := range config.Engines {
			add(engine)
		}
	}
	return engines
}
