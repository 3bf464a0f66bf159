package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-steplib/steps-webdrive-test/httpclient"
	"github.com/hashicorp/go-retryablehttp"
)

const httpEngineRetries = 2

type httpSession struct {
	ctx    context.Context
	client *retryablehttp.Client
	logger log.Logger
	closed bool
}

// NewHTTPFactory returns the factory of the plain HTTP client engine. It loads
// pages and keeps cookies between navigations but never executes scripts.
func NewHTTPFactory(logger log.Logger) Factory {
	return func(ctx context.Context) (Session, error) {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}

		client := httpclient.New(logger, httpEngineRetries)
		client.HTTPClient.Jar = jar
		client.CheckRetry = retryConnectionErrors

		return &httpSession{
			ctx:    ctx,
			client: client,
			logger: logger,
		}, nil
	}
}

func (s *httpSession) Configure(opts Options) error {
	if opts.JavaScriptEnabled {
		s.logger.Warnf("The %s engine does not execute JavaScript, suite tests will not run with it", HTTPEngine)
	}
	return nil
}

// Navigate loads the page. The response status is not an error: the application
// answers failing tests with error pages and reports outcomes through markers.
func (s *httpSession) Navigate(url string) error {
	if s.closed {
		return errors.New("session already closed")
	}

	req, err := retryablehttp.NewRequestWithContext(s.ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("invalid url (%s): %w", url, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Warnf("Failed to close response body: %s", err)
		}
	}()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("failed to read %s: %w", url, err)
	}

	s.logger.Debugf("GET %s: %s", url, resp.Status)
	return nil
}

func (s *httpSession) Quit() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.client.HTTPClient.CloseIdleConnections()
	return nil
}

// retryConnectionErrors retries only when no response arrived; any page the
// application serves, error pages included, is a completed navigation.
func retryConnectionErrors(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if resp != nil && err == nil {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}
