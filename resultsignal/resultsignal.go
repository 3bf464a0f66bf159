package resultsignal

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/steps-webdrive-test/catalog"
)

// Marker is the outcome a test reports through its result file.
type Marker string

// Markers ...
const (
	Passed Marker = "passed"
	Failed Marker = "failed"
)

// Signal ...
type Signal interface {
	Exists(test catalog.TestID, marker Marker) bool
}

type markerFileSignal struct {
	resultRoot  string
	pathChecker pathutil.PathChecker
	logger      log.Logger
}

// NewMarkerFileSignal returns a Signal backed by the marker files the application
// writes into its result directory.
func NewMarkerFileSignal(resultRoot string, pathChecker pathutil.PathChecker, logger log.Logger) Signal {
	return markerFileSignal{
		resultRoot:  resultRoot,
		pathChecker: pathChecker,
		logger:      logger,
	}
}

func (s markerFileSignal) Exists(test catalog.TestID, marker Marker) bool {
	pth := filepath.Join(s.resultRoot, MarkerFileName(test.ID, marker))
	exists, err := s.pathChecker.IsPathExists(pth)
	if err != nil {
		s.logger.Debugf("Failed to check result marker (%s): %s", pth, err)
		return false
	}
	return exists
}

// MarkerFileName ...
func MarkerFileName(testID string, marker Marker) string {
	return fmt.Sprintf("%s.%s.html", strings.ReplaceAll(testID, "/", "."), marker)
}
