package driver

import (
	"fmt"
	"regexp"

	"github.com/bitrise-io/go-utils/v2/command"
	"github.com/hashicorp/go-version"
)

var versionPattern = regexp.MustCompile(`\d+(\.\d+)+`)

// VersionChecker ...
type VersionChecker interface {
	BrowserVersion(cfg BrowserConfig) (*version.Version, error)
}

type versionChecker struct {
	commandFactory command.Factory
}

// NewVersionChecker ...
func NewVersionChecker(commandFactory command.Factory) VersionChecker {
	return versionChecker{commandFactory: commandFactory}
}

func (c versionChecker) BrowserVersion(cfg BrowserConfig) (*version.Version, error) {
	cmd := c.commandFactory.Create(cfg.Binary, []string{"--version"}, nil)
	out, err := cmd.RunAndReturnTrimmedCombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w, output: %s", cmd.PrintableCommandArgs(), err, out)
	}
	return ParseBrowserVersion(out)
}

// ParseBrowserVersion extracts the version from outputs like "Google Chrome 120.0.6099.109".
func ParseBrowserVersion(output string) (*version.Version, error) {
	match := versionPattern.FindString(output)
	if match == "" {
		return nil, fmt.Errorf("no version found in: %s", output)
	}
	return version.NewVersion(match)
}

// CheckMinimumVersion fails if the browser is too old to run headless.
func CheckMinimumVersion(engine string, browserVersion *version.Version) error {
	kind, ok := browserKinds[engine]
	if !ok {
		return fmt.Errorf("unsupported browser: %s", engine)
	}

	minVersion, err := version.NewVersion(kind.minVersion)
	if err != nil {
		return err
	}

	if browserVersion.LessThan(minVersion) {
		return fmt.Errorf("invalid %s version (%s), should not be less than min supported: %s", engine, browserVersion, minVersion)
	}
	return nil
}
