package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitrise-io/go-steputils/v2/export"
	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/errorutil"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/steps-webdrive-test/driver"
	"github.com/bitrise-steplib/steps-webdrive-test/filemover"
	"github.com/bitrise-steplib/steps-webdrive-test/output"
	"github.com/bitrise-steplib/steps-webdrive-test/step"
	"github.com/bitrise-steplib/steps-webdrive-test/testaddon"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger := log.NewLogger()
	configParser, webdriveTester := createStep(logger)

	config, err := configParser.ProcessConfig()
	if err != nil {
		logger.Errorf("%s", errorutil.FormattedError(fmt.Errorf("Failed to process Step inputs: %w", err)))
		return 1
	}

	if err := webdriveTester.InstallDeps(config); err != nil {
		logger.Errorf("%s", errorutil.FormattedError(fmt.Errorf("Failed to install Step dependencies: %w", err)))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, runErr := webdriveTester.Run(ctx, config)
	testFailed := runErr != nil || res.Verdict.Failed
	exportErr := webdriveTester.Export(res, testFailed)

	if runErr != nil {
		logger.Errorf("%s", errorutil.FormattedError(fmt.Errorf("Failed to execute Step main logic: %w", runErr)))
	}
	if exportErr != nil {
		logger.Errorf("%s", errorutil.FormattedError(fmt.Errorf("Failed to export Step outputs: %w", exportErr)))
	}

	return step.ExitCode(res, runErr, exportErr)
}

func createStep(logger log.Logger) (step.WebdriveTestConfigParser, step.WebdriveTestRunner) {
	envRepository := env.NewRepository()
	inputParser := stepconf.NewInputParser(envRepository)
	commandFactory := command.NewFactory(envRepository)
	fileManager := fileutil.NewFileManager()
	pathChecker := pathutil.NewPathChecker()
	pathProvider := pathutil.NewPathProvider()

	outputFilesExporter := export.NewExporter(commandFactory)
	outputExporter := output.NewExporter(
		envRepository,
		logger,
		fileManager,
		filemover.NewFileMover(),
		&outputFilesExporter,
		testaddon.NewExporter(commandFactory, logger),
	)

	configParser := step.NewWebdriveTestConfigParser(inputParser, logger)
	webdriveTester := step.NewWebdriveTestRunner(
		logger,
		driver.NewVersionChecker(commandFactory),
		outputExporter,
		pathChecker,
		pathProvider,
		fileManager,
	)

	return configParser, webdriveTester
}
