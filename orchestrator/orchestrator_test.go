package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-webdrive-test/application"
	"github.com/bitrise-steplib/steps-webdrive-test/catalog"
	"github.com/bitrise-steplib/steps-webdrive-test/driver"
	driverMocks "github.com/bitrise-steplib/steps-webdrive-test/driver/mocks"
	"github.com/bitrise-steplib/steps-webdrive-test/orchestrator/mocks"
	"github.com/bitrise-steplib/steps-webdrive-test/resultsignal"
	signalMocks "github.com/bitrise-steplib/steps-webdrive-test/resultsignal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	baseURL    = "http://localhost:9000"
	resultRoot = "/tmp/test-result"
	runnerPath = "/@tests/selenium/TestRunner.html"
)

var (
	httpEngine   = driver.EngineType{Name: driver.HTTPEngine}
	chromeEngine = driver.EngineType{Name: driver.ChromeEngine, Options: driver.Options{JavaScriptEnabled: true}}
)

// fakeApp plays the application under test: it resolves every test navigation
// into the outcome its script returns for the current engine and attempt.
type fakeApp struct {
	script      func(engine string, attempt int, testID string) Outcome
	engine      string
	navigations []string
	executed    map[string][][]string
	quits       int
}

func newFakeApp(script func(engine string, attempt int, testID string) Outcome) *fakeApp {
	return &fakeApp{
		script:   script,
		executed: map[string][][]string{},
	}
}

func (a *fakeApp) NewSession(_ context.Context, engine driver.EngineType) (driver.Session, error) {
	a.engine = engine.Name
	a.executed[engine.Name] = append(a.executed[engine.Name], nil)
	return &fakeSession{app: a}, nil
}

func (a *fakeApp) DefaultEngine() driver.EngineType {
	return httpEngine
}

func (a *fakeApp) EngineTypes() []driver.EngineType {
	return []driver.EngineType{httpEngine, chromeEngine}
}

func (a *fakeApp) attempt() int {
	return len(a.executed[a.engine]) - 1
}

func (a *fakeApp) Exists(test catalog.TestID, marker resultsignal.Marker) bool {
	switch a.script(a.engine, a.attempt(), test.ID) {
	case Passed:
		return marker == resultsignal.Passed
	case Failed:
		return marker == resultsignal.Failed
	default:
		return false
	}
}

type fakeSession struct {
	app *fakeApp
}

func (s *fakeSession) Configure(driver.Options) error {
	return nil
}

func (s *fakeSession) Navigate(url string) error {
	s.app.navigations = append(s.app.navigations, url)

	const testsPath = "/@tests/"
	var id string
	switch {
	case strings.HasPrefix(url, baseURL+runnerPath):
		id = url[strings.LastIndex(url, testsPath)+len(testsPath):]
	case strings.HasPrefix(url, baseURL+"/@tests/init"), strings.HasPrefix(url, baseURL+"/@tests/end"):
		return nil
	case strings.HasPrefix(url, baseURL+testsPath):
		id = strings.TrimPrefix(url, baseURL+testsPath)
	default:
		return nil
	}

	attempt := s.app.attempt()
	s.app.executed[s.app.engine][attempt] = append(s.app.executed[s.app.engine][attempt], id)
	return nil
}

func (s *fakeSession) Quit() error {
	s.app.quits++
	return nil
}

type waitCounter struct {
	count int
	err   error
}

func (w *waitCounter) wait(context.Context, time.Duration) error {
	w.count++
	return w.err
}

func createSut(cfg Config, registry driver.Registry, store ResultStore) (Orchestrator, *waitCounter) {
	waits := &waitCounter{}
	o := NewOrchestrator(cfg, registry, store, log.NewLogger())
	o.wait = waits.wait
	return o, waits
}

func defaultConfig() Config {
	return Config{
		BaseURL:       baseURL,
		MaxRetries:    3,
		TestTimeout:   5,
		RunUnitTests:  true,
		RunSuiteTests: true,
	}
}

func testCatalog(ids ...string) catalog.Catalog {
	return catalog.New(resultRoot, runnerPath, ids)
}

func Test_GivenAllTestsPass_WhenExecuting_ThenVerdictPassesAfterOneAttemptPerEngine(t *testing.T) {
	// Given
	app := newFakeApp(func(string, int, string) Outcome { return Passed })
	store := mocks.NewResultStore(t)
	store.On("SaveEngineResults", resultRoot, driver.HTTPEngine).Return().Twice()
	store.On("SaveEngineResults", resultRoot, driver.ChromeEngine).Return().Once()
	store.On("WriteVerdictMarker", resultRoot, false).Return(nil).Once()
	sut, waits := createSut(defaultConfig(), app, store)

	// When
	verdict, err := sut.Execute(context.Background(), testCatalog("models.UserTest.class", "login.test.html"), app)

	// Then
	require.NoError(t, err)
	assert.False(t, verdict.Failed)
	require.Len(t, verdict.Runs, 3)
	for _, run := range verdict.Runs {
		assert.Len(t, run.Attempts, 1)
		assert.False(t, run.PermanentlyFailed())
	}
	assert.Equal(t, [][]string{{"models.UserTest.class"}, {"login.test.html"}}, app.executed[driver.HTTPEngine])
	assert.Equal(t, [][]string{{"login.test.html"}}, app.executed[driver.ChromeEngine])
	assert.Equal(t, 3, app.quits)
	assert.Equal(t, 0, waits.count)
}

func Test_GivenTestPassesOnLastAllowedAttempt_WhenExecuting_ThenVerdictPasses(t *testing.T) {
	// Given
	app := newFakeApp(func(engine string, attempt int, testID string) Outcome {
		if testID == "b.test.html" && engine == driver.ChromeEngine && attempt < 3 {
			return Failed
		}
		return Passed
	})
	store := mocks.NewResultStore(t)
	store.On("SaveEngineResults", resultRoot, driver.HTTPEngine).Return().Once()
	store.On("SaveEngineResults", resultRoot, driver.ChromeEngine).Return().Times(4)
	store.On("WriteVerdictMarker", resultRoot, false).Return(nil).Once()
	cfg := defaultConfig()
	cfg.RunUnitTests = false
	sut, _ := createSut(cfg, app, store)

	// When
	verdict, err := sut.Execute(context.Background(), testCatalog("a.test.html", "b.test.html"), app)

	// Then
	require.NoError(t, err)
	assert.False(t, verdict.Failed)
	chromeRun := verdict.Runs[1]
	assert.Len(t, chromeRun.Attempts, 4)
	assert.Empty(t, chromeRun.Failed)
	assert.Equal(t, [][]string{
		{"a.test.html", "b.test.html"},
		{"b.test.html"},
		{"b.test.html"},
		{"b.test.html"},
	}, app.executed[driver.ChromeEngine])
}

func Test_GivenTestAlwaysFails_WhenExecuting_ThenRetriesAreBoundedAndVerdictFails(t *testing.T) {
	// Given
	app := newFakeApp(func(_ string, _ int, testID string) Outcome {
		if testID == "models.BrokenTest.class" {
			return Failed
		}
		return Passed
	})
	store := mocks.NewResultStore(t)
	store.On("SaveEngineResults", resultRoot, driver.HTTPEngine).Return().Times(3)
	store.On("WriteVerdictMarker", resultRoot, true).Return(nil).Once()
	cfg := defaultConfig()
	cfg.MaxRetries = 2
	cfg.RunSuiteTests = false
	sut, _ := createSut(cfg, app, store)

	// When
	verdict, err := sut.Execute(context.Background(), testCatalog("models.BrokenTest.class", "models.UserTest.class"), app)

	// Then
	require.NoError(t, err)
	assert.True(t, verdict.Failed)
	require.Len(t, verdict.Runs, 1)
	run := verdict.Runs[0]
	assert.Len(t, run.Attempts, 3)
	assert.Equal(t, []catalog.TestID{catalog.NewTestID("models.BrokenTest.class")}, run.Failed)
	for _, attempt := range app.executed[driver.HTTPEngine][1:] {
		assert.NotContains(t, attempt, "models.UserTest.class")
	}
	assert.Contains(t, app.navigations, baseURL+"/@tests/end?result=failed")
}

func Test_GivenNoMarkerEverAppears_WhenExecuting_ThenTestTimesOutAfterTimeoutPolls(t *testing.T) {
	// Given
	test := catalog.NewTestID("models.SlowTest.class")
	signal := signalMocks.NewSignal(t)
	signal.On("Exists", test, resultsignal.Passed).Return(false).Times(5)
	signal.On("Exists", test, resultsignal.Failed).Return(false).Times(5)

	session := driverMocks.NewSession(t)
	session.On("Configure", driver.Options{}).Return(nil).Once()
	session.On("Navigate", mock.Anything).Return(nil)
	session.On("Quit").Return(nil).Once()

	registry := driverMocks.NewRegistry(t)
	registry.On("DefaultEngine").Return(httpEngine).Once()
	registry.On("NewSession", mock.Anything, httpEngine).Return(session, nil).Once()

	store := mocks.NewResultStore(t)
	store.On("SaveEngineResults", resultRoot, driver.HTTPEngine).Return().Once()
	store.On("WriteVerdictMarker", resultRoot, true).Return(nil).Once()

	cfg := defaultConfig()
	cfg.MaxRetries = 0
	cfg.RunSuiteTests = false
	sut, waits := createSut(cfg, registry, store)

	// When
	verdict, err := sut.Execute(context.Background(), testCatalog(test.ID), signal)

	// Then
	require.NoError(t, err)
	assert.True(t, verdict.Failed)
	assert.Equal(t, TimedOut, verdict.Runs[0].Attempts[0].Results[0].Outcome)
	assert.Equal(t, []catalog.TestID{test}, verdict.Runs[0].Failed)
	assert.Equal(t, 4, waits.count)
}

func Test_GivenTimedOutTest_WhenExecuting_ThenOnlyItIsRetried(t *testing.T) {
	// Given
	app := newFakeApp(func(_ string, attempt int, testID string) Outcome {
		if testID == "c.test.html" && attempt == 0 {
			return TimedOut
		}
		return Passed
	})
	store := mocks.NewResultStore(t)
	store.On("SaveEngineResults", resultRoot, mock.Anything).Return()
	store.On("WriteVerdictMarker", resultRoot, false).Return(nil).Once()
	cfg := defaultConfig()
	cfg.RunUnitTests = false
	sut, waits := createSut(cfg, app, store)

	// When
	verdict, err := sut.Execute(context.Background(), testCatalog("a.test.html", "c.test.html"), app)

	// Then
	require.NoError(t, err)
	assert.False(t, verdict.Failed)
	assert.Equal(t, [][]string{{"a.test.html", "c.test.html"}, {"c.test.html"}}, app.executed[driver.HTTPEngine])
	assert.Equal(t, 2*4, waits.count)
}

func Test_GivenBothMarkersExist_WhenPolling_ThenPassedWins(t *testing.T) {
	// Given
	test := catalog.NewTestID("a.test.html")
	signal := signalMocks.NewSignal(t)
	signal.On("Exists", test, resultsignal.Passed).Return(true).Once()
	sut, _ := createSut(defaultConfig(), nil, nil)

	// When
	outcome, err := sut.poll(context.Background(), signal, test)

	// Then
	require.NoError(t, err)
	assert.Equal(t, Passed, outcome)
}

func Test_GivenCancelledContext_WhenPolling_ThenErrorIsReturned(t *testing.T) {
	// Given
	test := catalog.NewTestID("a.test.html")
	signal := signalMocks.NewSignal(t)
	signal.On("Exists", test, mock.Anything).Return(false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sut := NewOrchestrator(defaultConfig(), nil, nil, log.NewLogger())

	// When
	_, err := sut.poll(ctx, signal, test)

	// Then
	require.ErrorIs(t, err, context.Canceled)
}

func Test_GivenNavigationError_WhenExecuting_ThenSessionIsReleasedAndErrorIsFatal(t *testing.T) {
	// Given
	navigationErr := errors.New("connection refused")
	session := driverMocks.NewSession(t)
	session.On("Configure", driver.Options{}).Return(nil).Once()
	session.On("Navigate", baseURL+"/@tests/init").Return(navigationErr).Once()
	session.On("Quit").Return(nil).Once()

	registry := driverMocks.NewRegistry(t)
	registry.On("DefaultEngine").Return(httpEngine).Once()
	registry.On("NewSession", mock.Anything, httpEngine).Return(session, nil).Once()

	store := mocks.NewResultStore(t)
	cfg := defaultConfig()
	cfg.RunSuiteTests = false
	sut, _ := createSut(cfg, registry, store)

	// When
	_, err := sut.Execute(context.Background(), testCatalog("models.UserTest.class"), signalMocks.NewSignal(t))

	// Then
	require.ErrorIs(t, err, navigationErr)
	store.AssertNotCalled(t, "SaveEngineResults", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "WriteVerdictMarker", mock.Anything, mock.Anything)
}

func Test_GivenSessionCannotStart_WhenExecuting_ThenErrorIsFatal(t *testing.T) {
	// Given
	startErr := errors.New("chrome not found")
	registry := driverMocks.NewRegistry(t)
	registry.On("EngineTypes").Return([]driver.EngineType{chromeEngine}).Once()
	registry.On("NewSession", mock.Anything, chromeEngine).Return(nil, startErr).Once()

	cfg := defaultConfig()
	cfg.RunUnitTests = false
	sut, _ := createSut(cfg, registry, mocks.NewResultStore(t))

	// When
	_, err := sut.Execute(context.Background(), testCatalog("a.test.html"), signalMocks.NewSignal(t))

	// Then
	require.ErrorIs(t, err, startErr)
}

func Test_GivenQuitFails_WhenRunningAttempt_ThenFailedSubsetIsKept(t *testing.T) {
	// Given
	test := catalog.NewTestID("models.BrokenTest.class")
	quitErr := errors.New("engine hung")
	signal := signalMocks.NewSignal(t)
	signal.On("Exists", test, resultsignal.Passed).Return(false).Once()
	signal.On("Exists", test, resultsignal.Failed).Return(true).Once()

	session := driverMocks.NewSession(t)
	session.On("Configure", driver.Options{}).Return(nil).Once()
	session.On("Navigate", mock.Anything).Return(nil)
	session.On("Quit").Return(quitErr).Once()

	registry := driverMocks.NewRegistry(t)
	registry.On("NewSession", mock.Anything, httpEngine).Return(session, nil).Once()

	sut, _ := createSut(defaultConfig(), registry, nil)
	exec := execution{
		endpoints:  application.NewEndpoints(baseURL, runnerPath),
		resultRoot: resultRoot,
		signal:     signal,
	}

	// When
	result, err := sut.runAttempt(context.Background(), exec, httpEngine, []catalog.TestID{test}, 0)

	// Then
	require.ErrorIs(t, err, quitErr)
	assert.Equal(t, []catalog.TestID{test}, result.Failed)
}

func Test_GivenJavaScriptEnabled_WhenSuiteTestsAreDisabled_ThenSuiteBatchStillRuns(t *testing.T) {
	// Given
	app := newFakeApp(func(string, int, string) Outcome { return Passed })
	store := mocks.NewResultStore(t)
	store.On("SaveEngineResults", resultRoot, mock.Anything).Return()
	store.On("WriteVerdictMarker", resultRoot, false).Return(nil).Once()
	cfg := defaultConfig()
	cfg.RunUnitTests = false
	cfg.RunSuiteTests = false
	cfg.JavaScriptEnabled = true
	sut, _ := createSut(cfg, app, store)

	// When
	verdict, err := sut.Execute(context.Background(), testCatalog("a.test.html"), app)

	// Then
	require.NoError(t, err)
	assert.Len(t, verdict.Runs, 2)
	assert.Equal(t, [][]string{{"a.test.html"}}, app.executed[driver.ChromeEngine])
}

func Test_GivenEmptyBatch_WhenExecuting_ThenNoSessionIsStarted(t *testing.T) {
	// Given
	app := newFakeApp(func(string, int, string) Outcome { return Passed })
	store := mocks.NewResultStore(t)
	store.On("SaveEngineResults", resultRoot, driver.HTTPEngine).Return().Once()
	store.On("WriteVerdictMarker", resultRoot, false).Return(nil).Twice()
	cfg := defaultConfig()
	cfg.RunSuiteTests = false
	sut, _ := createSut(cfg, app, store)

	// When
	verdict, err := sut.Execute(context.Background(), testCatalog("models.UserTest.class"), app)

	// Then
	require.NoError(t, err)
	assert.False(t, verdict.Failed)
	assert.Equal(t, 1, app.quits)

	// When
	verdict, err = NewOrchestrator(defaultConfig(), app, store, log.NewLogger()).Execute(context.Background(), catalog.Catalog{ResultRoot: resultRoot}, app)

	// Then
	require.NoError(t, err)
	assert.Equal(t, 1, app.quits)
	assert.Len(t, verdict.Runs, 3)
}

func TestVerdict_Fold(t *testing.T) {
	passed := EngineRun{Engine: httpEngine}
	failed := EngineRun{Engine: chromeEngine, Failed: []catalog.TestID{catalog.NewTestID("a.test.html")}}

	tests := []struct {
		name string
		runs []EngineRun
		want bool
	}{
		{name: "no runs", want: false},
		{name: "all passed", runs: []EngineRun{passed, passed}, want: false},
		{name: "one failed", runs: []EngineRun{passed, failed}, want: true},
		{name: "failure is never reset", runs: []EngineRun{failed, passed}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verdict Verdict
			for _, run := range tt.runs {
				verdict = verdict.Fold(run)
			}
			assert.Equal(t, tt.want, verdict.Failed)
			assert.Len(t, verdict.Runs, len(tt.runs))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(300*time.Millisecond))
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "1 min 5s", FormatDuration(65*time.Second))
}

func TestFormatProgressLine(t *testing.T) {
	result := TestResult{Test: catalog.NewTestID("models.UserTest.class"), Outcome: Failed, Duration: 3 * time.Second}

	line := formatProgressLine(result, len("models/UserTest")+4)

	assert.True(t, strings.HasPrefix(line, "models/UserTest...     "))
	assert.Contains(t, line, "FAILED")
	assert.True(t, strings.HasSuffix(line, "3s"))
}
