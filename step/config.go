package step

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bitrise-io/go-steputils/v2/stepconf"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-webdrive-test/driver"
	shellquote "github.com/kballard/go-shellquote"
)

const (
	defaultAppURL           = "http://localhost:9000"
	defaultDiscoveryRetries = 3
	defaultRetryCount       = 3
	defaultTestTimeout      = 120
	defaultSuiteEngine      = driver.ChromeEngine

	defaultChromeBinary  = "google-chrome"
	defaultFirefoxBinary = "firefox"
)

// Input ...
type Input struct {
	// Application
	AppURL              string `env:"app_url"`
	DiscoveryRetries    string `env:"discovery_retries"`
	ShutdownApplication bool   `env:"shutdown_application,opt[yes,no]"`

	// Test run
	RetryCount        string `env:"retry_count"`
	TestTimeout       string `env:"test_timeout"`
	RunUnitTests      bool   `env:"run_unit_tests,opt[yes,no]"`
	RunSuiteTests     bool   `env:"run_suite_tests,opt[yes,no]"`
	JavaScriptEnabled bool   `env:"javascript_enabled,opt[yes,no]"`

	// Engines
	DefaultEngine string `env:"default_engine,opt[http,chrome,firefox]"`
	Engines       string `env:"engines"`
	ChromeBinary  string `env:"chrome_binary"`
	FirefoxBinary string `env:"firefox_binary"`
	BrowserArgs   string `env:"browser_args"`

	// Debug
	Verbose bool `env:"verbose,opt[yes,no]"`

	// Output export
	DeployDir string `env:"BITRISE_DEPLOY_DIR"`
}

// Config ...
type Config struct {
	AppURL              string
	DiscoveryRetries    int
	ShutdownApplication bool

	MaxRetries        int
	TestTimeout       int
	RunUnitTests      bool
	RunSuiteTests     bool
	JavaScriptEnabled bool

	DefaultEngine string
	Engines       []string
	Browsers      map[string]driver.BrowserConfig

	DeployDir string
}

// WebdriveTestConfigParser ...
type WebdriveTestConfigParser struct {
	inputParser stepconf.InputParser
	logger      log.Logger
}

// NewWebdriveTestConfigParser ...
func NewWebdriveTestConfigParser(inputParser stepconf.InputParser, logger log.Logger) WebdriveTestConfigParser {
	return WebdriveTestConfigParser{
		inputParser: inputParser,
		logger:      logger,
	}
}

// ProcessConfig ...
func (p WebdriveTestConfigParser) ProcessConfig() (Config, error) {
	var input Input
	if err := p.inputParser.Parse(&input); err != nil {
		return Config{}, err
	}

	stepconf.Print(input)
	p.logger.Println()

	p.logger.EnableDebugLog(input.Verbose)

	appURL, err := parseAppURL(input.AppURL)
	if err != nil {
		return Config{}, err
	}
	p.logger.Printf("Using a base url value of %s", appURL)

	discoveryRetries, err := parseNonNegative("discovery_retries", input.DiscoveryRetries, defaultDiscoveryRetries)
	if err != nil {
		return Config{}, err
	}

	maxRetries, err := parseNonNegative("retry_count", input.RetryCount, defaultRetryCount)
	if err != nil {
		return Config{}, err
	}

	testTimeout := p.parseTestTimeout(input.TestTimeout)
	p.logger.Printf("Using a timeout value of %d seconds", testTimeout)

	engines, err := parseEngines(input.Engines)
	if err != nil {
		return Config{}, err
	}

	browserArgs, err := shellquote.Split(input.BrowserArgs)
	if err != nil {
		return Config{}, fmt.Errorf("provided browser_args (%s) are not valid CLI parameters: %w", input.BrowserArgs, err)
	}

	defaultEngine := valueOrDefault(input.DefaultEngine, driver.HTTPEngine)
	if err := checkJavaScriptEngines(input, defaultEngine, engines); err != nil {
		return Config{}, err
	}

	if !input.RunUnitTests && !input.RunSuiteTests && !input.JavaScriptEnabled {
		p.logger.Warnf("Neither unit nor suite tests are enabled, only the result marker will be written")
	}

	return Config{
		AppURL:              appURL,
		DiscoveryRetries:    discoveryRetries,
		ShutdownApplication: input.ShutdownApplication,

		MaxRetries:        maxRetries,
		TestTimeout:       testTimeout,
		RunUnitTests:      input.RunUnitTests,
		RunSuiteTests:     input.RunSuiteTests,
		JavaScriptEnabled: input.JavaScriptEnabled,

		DefaultEngine: defaultEngine,
		Engines:       engines,
		Browsers: map[string]driver.BrowserConfig{
			driver.ChromeEngine: {
				Name:   driver.ChromeEngine,
				Binary: valueOrDefault(input.ChromeBinary, defaultChromeBinary),
				Args:   browserArgs,
			},
			driver.FirefoxEngine: {
				Name:   driver.FirefoxEngine,
				Binary: valueOrDefault(input.FirefoxBinary, defaultFirefoxBinary),
				Args:   browserArgs,
			},
		},

		DeployDir: input.DeployDir,
	}, nil
}

// parseTestTimeout falls back to the default on anything but a positive number.
func (p WebdriveTestConfigParser) parseTestTimeout(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultTestTimeout
	}

	timeout, err := strconv.Atoi(value)
	if err != nil || timeout <= 0 {
		p.logger.Warnf("The timeout value %s is not a positive number. Setting to default value %d seconds", value, defaultTestTimeout)
		return defaultTestTimeout
	}
	return timeout
}

func parseAppURL(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultAppURL, nil
	}

	u, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid input: app_url (%s): %w", value, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid input: app_url (%s) should be an http(s) url", value)
	}
	return strings.TrimSuffix(value, "/"), nil
}

func parseNonNegative(key, value string, defaultValue int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid input: %s (%s) is not a number: %w", key, value, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid input: %s should not be negative: %d", key, n)
	}
	return n, nil
}

// checkJavaScriptEngines rejects the http engine wherever a page has to run
// scripts: suite tests and the default engine with JavaScript enabled.
func checkJavaScriptEngines(input Input, defaultEngine string, engines []string) error {
	if input.JavaScriptEnabled && defaultEngine == driver.HTTPEngine {
		return fmt.Errorf("invalid input: javascript_enabled requires a browser default_engine (%s or %s), the %s engine can not run scripts", driver.ChromeEngine, driver.FirefoxEngine, driver.HTTPEngine)
	}

	if !input.RunSuiteTests && !input.JavaScriptEnabled {
		return nil
	}
	for _, engine := range engines {
		if engine == driver.HTTPEngine {
			return fmt.Errorf("invalid input: engines: the %s engine can not run suite tests, use %s or %s", driver.HTTPEngine, driver.ChromeEngine, driver.FirefoxEngine)
		}
	}
	return nil
}

// parseEngines splits a comma or whitespace separated engine list, keeping the
// first occurrence of every engine.
func parseEngines(value string) ([]string, error) {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return []string{defaultSuiteEngine}, nil
	}

	var engines []string
	seen := map[string]bool{}
	for _, field := range fields {
		engine := strings.ToLower(field)
		switch engine {
		case driver.HTTPEngine, driver.ChromeEngine, driver.FirefoxEngine:
		default:
			return nil, fmt.Errorf("invalid input: engines: unknown engine: %s", field)
		}

		if seen[engine] {
			continue
		}
		seen[engine] = true
		engines = append(engines, engine)
	}
	return engines, nil
}

func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
