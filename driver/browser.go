package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/bitrise-io/go-utils/errorutil"
	"github.com/bitrise-io/go-utils/v2/fileutil"
	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/pathutil"
)

const (
	stopGracePeriod = 3 * time.Second
	pageLoadTimeout = 60 * time.Second
)

// BrowserConfig ...
type BrowserConfig struct {
	Name   string
	Binary string
	Args   []string
}

type browserKind struct {
	minVersion     string
	headlessArgs   func(profileDir string) []string
	javaScriptArgs func(enabled bool) ([]string, bool)
}

var browserKinds = map[string]browserKind{
	ChromeEngine: {
		minVersion: "59.0",
		headlessArgs: func(profileDir string) []string {
			return []string{"--headless", "--disable-gpu", "--no-first-run", "--no-default-browser-check", "--user-data-dir=" + profileDir}
		},
		javaScriptArgs: func(enabled bool) ([]string, bool) {
			if enabled {
				return nil, true
			}
			return []string{"--blink-settings=scriptEnabled=false"}, true
		},
	},
	FirefoxEngine: {
		minVersion: "56.0",
		headlessArgs: func(profileDir string) []string {
			return []string{"--headless", "--new-instance", "--profile", profileDir}
		},
		javaScriptArgs: func(enabled bool) ([]string, bool) {
			return nil, enabled
		},
	},
}

type browserSession struct {
	ctx         context.Context
	cfg         BrowserConfig
	kind        browserKind
	logger      log.Logger
	fileManager fileutil.FileManager

	profileDir  string
	jsArgs      []string
	loadTimeout time.Duration

	cancel context.CancelFunc
	done   chan error
	closed bool
}

// NewBrowserFactory returns the factory of a headless browser engine. Every
// navigation starts a browser process that loads the target page and exits;
// Navigate returns once the page is loaded. A page still loading after the
// load timeout is left running until the next navigation or Quit.
func NewBrowserFactory(cfg BrowserConfig, logger log.Logger, pathProvider pathutil.PathProvider, fileManager fileutil.FileManager) Factory {
	return func(ctx context.Context) (Session, error) {
		kind, ok := browserKinds[cfg.Name]
		if !ok {
			return nil, fmt.Errorf("unsupported browser: %s", cfg.Name)
		}

		profileDir, err := pathProvider.CreateTempDir("webdrive-" + cfg.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create browser profile directory: %w", err)
		}

		return &browserSession{
			ctx:         ctx,
			cfg:         cfg,
			kind:        kind,
			logger:      logger,
			fileManager: fileManager,
			profileDir:  profileDir,
			loadTimeout: pageLoadTimeout,
		}, nil
	}
}

func (s *browserSession) Configure(opts Options) error {
	args, supported := s.kind.javaScriptArgs(opts.JavaScriptEnabled)
	if !supported {
		s.logger.Warnf("%s can not disable JavaScript from the command line, running with JavaScript enabled", s.cfg.Name)
	}
	s.jsArgs = args
	return nil
}

func (s *browserSession) Navigate(url string) error {
	if s.closed {
		return errors.New("session already closed")
	}

	s.stop()

	ctx, cancel := context.WithCancel(s.ctx)
	cmd := exec.CommandContext(ctx, s.cfg.Binary, s.args(url)...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = stopGracePeriod

	s.logger.Debugf("$ %s %v", s.cfg.Binary, cmd.Args[1:])
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start %s: %w", s.cfg.Binary, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(s.loadTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		cancel()
		if err != nil {
			return fmt.Errorf("%s failed to load %s: %w", s.cfg.Name, url, err)
		}
		return nil
	case <-s.ctx.Done():
		cancel()
		<-done
		return s.ctx.Err()
	case <-timer.C:
		s.logger.Warnf("%s is still loading %s after %s", s.cfg.Name, url, s.loadTimeout)
		s.cancel = cancel
		s.done = done
		return nil
	}
}

func (s *browserSession) Quit() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.stop()

	if err := s.fileManager.RemoveAll(s.profileDir); err != nil {
		return fmt.Errorf("failed to remove browser profile (%s): %w", s.profileDir, err)
	}
	return nil
}

func (s *browserSession) args(url string) []string {
	return browserArgs(s.kind.headlessArgs(s.profileDir), s.jsArgs, s.cfg.Args, url)
}

func (s *browserSession) stop() {
	if s.done == nil {
		return
	}

	select {
	case err := <-s.done:
		// the browser exited before we asked it to
		if err != nil && errorutil.IsExitStatusError(err) {
			s.logger.Warnf("%s exited unexpectedly: %s", s.cfg.Name, err)
		}
	default:
		s.cancel()
		if err := <-s.done; err != nil {
			s.logger.Debugf("%s stopped: %s", s.cfg.Name, err)
		}
	}

	s.cancel()
	s.cancel = nil
	s.done = nil
}

func browserArgs(headless, javaScript, extra []string, url string) []string {
	args := append([]string{}, headless...)
	args = append(args, javaScript...)
	args = append(args, extra...)
	return append(args, url)
}
