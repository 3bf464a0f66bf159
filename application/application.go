package application

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bitrise-io/go-utils/progress"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-webdrive-test/catalog"
	"github.com/bitrise-steplib/steps-webdrive-test/httpclient"
	"github.com/hashicorp/go-retryablehttp"
)

const listMarker = "---"

// Client talks to the test endpoints of the application under test.
type Client interface {
	Discover(ctx context.Context) (catalog.Catalog, error)
	Kill(ctx context.Context) error
}

type client struct {
	baseURL    string
	httpClient *retryablehttp.Client
	logger     log.Logger
}

// NewClient ...
func NewClient(baseURL string, retries int, logger log.Logger) Client {
	return client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpclient.New(logger, retries),
		logger:     logger,
	}
}

// Discover retrieves the list of tests to run.
func (c client) Discover(ctx context.Context) (catalog.Catalog, error) {
	var tests catalog.Catalog
	var err error
	progress.NewDefaultWrapper("Retrieving the list of tests").WrapAction(func() {
		tests, err = c.discover(ctx)
	})
	if err != nil {
		return catalog.Catalog{}, err
	}

	c.logger.Printf("%d suite test%s to run", len(tests.SuiteTests), plural(len(tests.SuiteTests)))
	c.logger.Printf("%d other test%s to run", len(tests.UnitTests), plural(len(tests.UnitTests)))
	return tests, nil
}

func (c client) discover(ctx context.Context) (catalog.Catalog, error) {
	url := c.baseURL + "/@tests.list"
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("invalid application url (%s): %w", c.baseURL, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("the application does not respond at %s: %w", url, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warnf("Failed to close response body: %s", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return catalog.Catalog{}, fmt.Errorf("the application failed to list tests: %s", resp.Status)
	}

	return ParseTestList(resp.Body)
}

// ParseTestList reads the test list document: a "---" marker line, the result
// directory, the suite runner path, then one test identifier per line.
func ParseTestList(r io.Reader) (catalog.Catalog, error) {
	scanner := bufio.NewScanner(r)

	var header []string
	var ids []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if len(header) < 3 {
			header = append(header, line)
			continue
		}
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return catalog.Catalog{}, fmt.Errorf("failed to read the list of tests: %w", err)
	}

	if len(header) == 0 || header[0] != listMarker {
		return catalog.Catalog{}, errors.New("error retrieving list of tests: missing list marker")
	}
	if len(header) < 3 {
		return catalog.Catalog{}, errors.New("error retrieving list of tests: truncated header")
	}
	if header[1] == "" {
		return catalog.Catalog{}, errors.New("error retrieving list of tests: empty result directory")
	}

	return catalog.New(header[1], header[2], ids), nil
}

// Kill asks the application to shut down. The application drops the connection
// while stopping, so only a failure to build the request is an error.
func (c client) Kill(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/@kill", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.HTTPClient.Do(req)
	if err != nil {
		c.logger.Debugf("Kill request ended with: %s", err)
		return nil
	}
	if err := resp.Body.Close(); err != nil {
		c.logger.Debugf("Failed to close response body: %s", err)
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
