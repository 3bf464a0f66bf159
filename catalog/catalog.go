package catalog

import "strings"

const (
	unitSuffix  = ".class"
	suiteSuffix = ".test.html"
)

// Kind ...
type Kind int

// Test kinds ...
const (
	UnitFunctional Kind = iota
	SuiteDriven
)

func (k Kind) String() string {
	if k == SuiteDriven {
		return "suite"
	}
	return "unit/functional"
}

// TestID identifies one discovered test, as listed by the application.
type TestID struct {
	ID   string
	Name string
	Kind Kind
}

// NewTestID classifies a raw test identifier by its suffix.
func NewTestID(id string) TestID {
	return TestID{
		ID:   id,
		Name: DisplayName(id),
		Kind: Classify(id),
	}
}

// Classify ...
func Classify(id string) Kind {
	if strings.HasSuffix(id, suiteSuffix) {
		return SuiteDriven
	}
	return UnitFunctional
}

// DisplayName strips the test suffix and turns package and nested class separators into slashes.
func DisplayName(id string) string {
	name := strings.TrimSuffix(id, unitSuffix)
	name = strings.TrimSuffix(name, suiteSuffix)
	name = strings.ReplaceAll(name, ".", "/")
	return strings.ReplaceAll(name, "$", "/")
}

// Catalog holds the outcome of the test discovery.
type Catalog struct {
	ResultRoot  string
	RunnerPath  string
	SuiteTests  []TestID
	UnitTests   []TestID
	longestName int
}

// New ...
func New(resultRoot, runnerPath string, ids []string) Catalog {
	c := Catalog{
		ResultRoot: resultRoot,
		RunnerPath: runnerPath,
	}
	for _, id := range ids {
		c.add(NewTestID(id))
	}
	return c
}

func (c *Catalog) add(test TestID) {
	if len(test.Name) > c.longestName {
		c.longestName = len(test.Name)
	}

	if test.Kind == SuiteDriven {
		c.SuiteTests = append(c.SuiteTests, test)
	} else {
		c.UnitTests = append(c.UnitTests, test)
	}
}

// LongestName returns the length of the longest display name, used to align progress output.
func (c Catalog) LongestName() int {
	return c.longestName
}
