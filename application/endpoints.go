package application

import (
	"fmt"
	"strings"

	"github.com/bitrise-steplib/steps-webdrive-test/catalog"
)

// Endpoints builds the URLs the engines are navigated to.
type Endpoints struct {
	BaseURL    string
	RunnerPath string
}

// NewEndpoints ...
func NewEndpoints(baseURL, runnerPath string) Endpoints {
	return Endpoints{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		RunnerPath: runnerPath,
	}
}

// InitURL tells the application a fresh test run starts.
func (e Endpoints) InitURL() string {
	return e.BaseURL + "/@tests/init"
}

// TestURL ...
func (e Endpoints) TestURL(test catalog.TestID) string {
	if test.Kind == catalog.UnitFunctional {
		return e.BaseURL + "/@tests/" + test.ID
	}
	return fmt.Sprintf("%s%s?baseUrl=%s&test=/@tests/%s.suite&auto=true&resultsUrl=/@tests/%s", e.BaseURL, e.RunnerPath, e.BaseURL, test.ID, test.ID)
}

// EndURL reports the aggregate result of the run to the application.
func (e Endpoints) EndURL(failed bool) string {
	result := "passed"
	if failed {
		result = "failed"
	}
	return e.BaseURL + "/@tests/end?result=" + result
}
