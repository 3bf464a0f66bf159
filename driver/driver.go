package driver

import (
	"context"
	"fmt"
)

// Engine names ...
const (
	HTTPEngine    = "http"
	ChromeEngine  = "chrome"
	FirefoxEngine = "firefox"
)

// Session is one automation engine instance. A session is used for a single
// attempt and released with Quit.
type Session interface {
	Configure(opts Options) error
	Navigate(url string) error
	Quit() error
}

// Options ...
type Options struct {
	JavaScriptEnabled bool
}

// EngineType ...
type EngineType struct {
	Name    string
	Options Options
}

// Factory creates a fresh session of one engine kind.
type Factory func(ctx context.Context) (Session, error)

// Registry ...
type Registry interface {
	DefaultEngine() EngineType
	EngineTypes() []EngineType
	NewSession(ctx context.Context, engine EngineType) (Session, error)
}

type registry struct {
	defaultEngine EngineType
	engines       []EngineType
	factories     map[string]Factory
}

// NewRegistry validates that every requested engine has a factory.
func NewRegistry(defaultEngine EngineType, engines []EngineType, factories map[string]Factory) (Registry, error) {
	if _, ok := factories[defaultEngine.Name]; !ok {
		return nil, fmt.Errorf("unknown default engine: %s", defaultEngine.Name)
	}
	for _, engine := range engines {
		if _, ok := factories[engine.Name]; !ok {
			return nil, fmt.Errorf("unknown engine: %s", engine.Name)
		}
	}

	return registry{
		defaultEngine: defaultEngine,
		engines:       engines,
		factories:     factories,
	}, nil
}

func (r registry) DefaultEngine() EngineType {
	return r.defaultEngine
}

func (r registry) EngineTypes() []EngineType {
	return r.engines
}

func (r registry) NewSession(ctx context.Context, engine EngineType) (Session, error) {
	factory, ok := r.factories[engine.Name]
	if !ok {
		return nil, fmt.Errorf("unknown engine: %s", engine.Name)
	}

	session, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s engine: %w", engine.Name, err)
	}
	return session, nil
}

// IsBrowserEngine reports whether the engine drives a real browser process.
func IsBrowserEngine(name string) bool {
	return name == ChromeEngine || name == FirefoxEngine
}
