package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

type (
	// Connector is the host-facing contract every registered connector satisfies.
	// Callers type-assert to the concrete connector for the full API.
	Connector interface {
		TestConnection(ctx context.Context) error
		Close() error
	}

	// Factory builds a connector from a structured configuration block. A nil
	// logger selects a discarding logger.
	Factory func(values map[string]any, logger *slog.Logger) (Connector, error)

	// Registry maps connector type keys to factories. It is safe for concurrent
	// use.
	Registry struct {
		mu        sync.RWMutex
		factories map[string]Factory
	}

	// UnknownConnectorError is returned when an unregistered type is requested.
	UnknownConnectorError struct {
		Type      string
		Available []string
	}
)

func (e *UnknownConnectorError) Error() string {
	return fmt.Sprintf("unknown connector type %q\nAvailable connectors: %v\nHint: check the type field of your database configuration", e.Type, e.Available)
}

// Default is the process-wide registry used by the package level functions.
var Default = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name, replacing any previous registration.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get retrieves a factory by name.
func (r *Registry) Get(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// New creates a connector of the given type from a configuration block.
func (r *Registry) New(name string, values map[string]any, logger *slog.Logger) (Connector, error) {
	if name == "" {
		return nil, errors.New("connector type not specified")
	}

	factory, ok := r.Get(name)
	if !ok {
		return nil, &UnknownConnectorError{
			Type:      name,
			Available: r.List(),
		}
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return factory(values, logger)
}

// List returns all registered connector names (sorted).
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a connector type is registered.
func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Register adds a factory to the Default registry.
func Register(name string, factory Factory) { Default.Register(name, factory) }

// Get retrieves a factory from the Default registry.
func Get(name string) (Factory, bool) { return Default.Get(name) }

// New creates a connector from the Default registry.
func New(name string, values map[string]any, logger *slog.Logger) (Connector, error) {
	return Default.New(name, values, logger)
}

// List returns the names registered with the Default registry.
func List() []string { return Default.List() }

// IsRegistered checks the Default registry.
func IsRegistered(name string) bool { return Default.IsRegistered(name) }
