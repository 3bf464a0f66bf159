package testaddon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/bitrise-io/go-utils/v2/log"
)

const metadataFileName = "test-info.json"

// Exporter ...
type Exporter interface {
	CopyAndSaveMetadata(info AddonCopy) error
}

// AddonCopy ...
type AddonCopy struct {
	SourceTestOutputDir   string
	TargetAddonPath       string
	TargetAddonBundleName string
}

type exporter struct {
	commandFactory command.Factory
	logger         log.Logger
}

// NewExporter ...
func NewExporter(commandFactory command.Factory, logger log.Logger) Exporter {
	return &exporter{
		commandFactory: commandFactory,
		logger:         logger,
	}
}

// CopyAndSaveMetadata copies one engine's result directory into the test addon
// directory and describes it with a test-info.json.
func (e exporter) CopyAndSaveMetadata(info AddonCopy) error {
	bundleName := ReplaceUnsupportedFilenameCharacters(info.TargetAddonBundleName)
	addonPerStepOutputDir := filepath.Join(info.TargetAddonPath, bundleName)

	if err := e.copyDirectoryContent(info.SourceTestOutputDir, addonPerStepOutputDir); err != nil {
		return err
	}
	return saveBundleMetadata(addonPerStepOutputDir, bundleName)
}

func (e exporter) copyDirectoryContent(sourceDir, targetDir string) error {
	if err := os.MkdirAll(targetDir, 0700); err != nil {
		return fmt.Errorf("failed to create directory (%s): %w", targetDir, err)
	}

	// the trailing `/.` copies the content, not the directory itself
	cmd := e.commandFactory.Create("cp", []string{"-a", sourceDir + "/.", targetDir + "/"}, nil)
	e.logger.Donef("$ %s", cmd.PrintableCommandArgs())
	if out, err := cmd.RunAndReturnTrimmedCombinedOutput(); err != nil {
		return fmt.Errorf("copy failed: %w, output: %s", err, out)
	}
	return nil
}

func saveBundleMetadata(outputDir string, bundleName string) error {
	type testBundle struct {
		BundleName string `json:"test-name"`
	}
	bytes, err := json.Marshal(testBundle{
		BundleName: bundleName,
	})
	if err != nil {
		return fmt.Errorf("could not encode metadata: %w", err)
	}
	if err = os.WriteFile(filepath.Join(outputDir, metadataFileName), bytes, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// ReplaceUnsupportedFilenameCharacters replaces '/' and ':', which are not allowed in directory names.
func ReplaceUnsupportedFilenameCharacters(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	return strings.ReplaceAll(s, ":", "-")
}
