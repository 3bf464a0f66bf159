package output

import (
	"path/filepath"

	"github.com/bitrise-io/bitrise/configs"
	"github.com/bitrise-io/go-utils/v2/env"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-webdrive-test/filemover"
	"github.com/bitrise-steplib/steps-webdrive-test/testaddon"
)

const (
	testResultEnvKey     = "BITRISE_WEBDRIVE_TEST_RESULT"
	resultsZipPathEnvKey = "BITRISE_WEBDRIVE_TEST_RESULTS_ZIP_PATH"
	resultsZipName       = "webdrive-test-results.zip"

	// the application keeps writing its log while the engines run
	applicationLog = "application.log"
)

// OutputExporter is satisfied by *export.Exporter.
type OutputExporter interface {
	ExportOutputFilesZip(key string, sourcePaths []string, zipPath string) error
}

// Exporter ...
type Exporter interface {
	SaveEngineResults(resultRoot, engineName string)
	WriteVerdictMarker(resultRoot string, failed bool) error
	ExportTestRunResult(failed bool)
	ExportResultsArchive(deployDir, resultRoot string)
	ExportTestAddonResults(resultRoot string, engineNames []string)
}

type exporter struct {
	envRepository     env.Repository
	logger            log.Logger
	fileManager       fileutil.FileManager
	fileMover         filemover.FileMover
	outputExporter    OutputExporter
	testAddonExporter testaddon.Exporter
}

// NewExporter ...
func NewExporter(envRepository env.Repository, logger log.Logger, fileManager fileutil.FileManager, fileMover filemover.FileMover, outputExporter OutputExporter, testAddonExporter testaddon.Exporter) Exporter {
	return &exporter{
		envRepository:     envRepository,
		logger:            logger,
		fileManager:       fileManager,
		fileMover:         fileMover,
		outputExporter:    outputExporter,
		testAddonExporter: testAddonExporter,
	}
}

// SaveEngineResults moves the files of the last run from the result root
// into the engine's subdirectory. Failures are logged, the run goes on.
func (e exporter) SaveEngineResults(resultRoot, engineName string) {
	destDir := filepath.Join(resultRoot, engineName)
	if err := e.fileMover.MkdirAll(destDir); err != nil {
		e.logger.Warnf("Could not create %s: %s", destDir, err)
		return
	}

	files, err := e.fileMover.Files(resultRoot)
	if err != nil {
		e.logger.Warnf("Could not list test results in %s: %s", resultRoot, err)
		return
	}

	for _, pth := range files {
		name := filepath.Base(pth)
		if name == applicationLog {
			continue
		}

		newPth := filepath.Join(destDir, name)
		if err := e.fileMover.Move(pth, newPth); err != nil {
			e.logger.Warnf("Could not move %s to %s: %s", pth, newPth, err)
		}
	}
}

func (e exporter) WriteVerdictMarker(resultRoot string, failed bool) error {
	return e.fileManager.Write(filepath.Join(resultRoot, VerdictMarkerName(failed)), "", 0644)
}

func (e exporter) ExportTestRunResult(failed bool) {
	status := "succeeded"
	if failed {
		status = "failed"
	}
	if err := e.envRepository.Set(testResultEnvKey, status); err != nil {
		e.logger.Warnf("Failed to export: %s: %s", testResultEnvKey, err)
	}
}

func (e exporter) ExportResultsArchive(deployDir, resultRoot string) {
	if deployDir == "" {
		return
	}

	zipPath := filepath.Join(deployDir, resultsZipName)
	if err := e.outputExporter.ExportOutputFilesZip(resultsZipPathEnvKey, []string{resultRoot}, zipPath); err != nil {
		e.logger.Warnf("Failed to export: %s: %s", resultsZipPathEnvKey, err)
	}
}

func (e exporter) ExportTestAddonResults(resultRoot string, engineNames []string) {
	addonResultPath := e.envRepository.Get(configs.BitrisePerStepTestResultDirEnvKey)
	if len(addonResultPath) == 0 {
		return
	}

	e.logger.Println()
	e.logger.Infof("Exporting test results")

	for _, engineName := range engineNames {
		if err := e.testAddonExporter.CopyAndSaveMetadata(testaddon.AddonCopy{
			SourceTestOutputDir:   filepath.Join(resultRoot, engineName),
			TargetAddonPath:       addonResultPath,
			TargetAddonBundleName: "webdrive-" + engineName,
		}); err != nil {
			e.logger.Warnf("Failed to export test results of %s: %s", engineName, err)
		}
	}
}

// VerdictMarkerName ...
func VerdictMarkerName(failed bool) string {
	if failed {
		return "result.failed"
	}
	return "result.passed"
}
