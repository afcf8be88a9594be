package connector

import (
	"context"
	"fmt"
	"sync"

	"ceap/domain"
)

// Connector is a per-source-system integration: it validates its
// configuration, pulls raw records, and turns each record into a
// normalized candidate.
type Connector interface {
	Name() string
	ValidateConfig(cfg domain.DataConnectorConfig) error
	Extract(ctx context.Context, cfg domain.DataConnectorConfig) ([]map[string]any, error)
	Transform(ctx context.Context, cfg domain.DataConnectorConfig, baseContext []domain.Context, record map[string]any) (domain.Candidate, error)
}

// Registry holds connector implementations keyed by connector type,
// selected at configuration time.
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]Connector
}

func NewRegistry() *Registry {
	return &Registry{connectors: make(map[string]Connector)}
}

func (r *Registry) Register(c Connector) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if name == "" {
		return fmt.Errorf("connector name is required")
	}
	if _, exists := r.connectors[name]; exists {
		return fmt.Errorf("connector %q already registered", name)
	}
	r.connectors[name] = c
	return nil
}

func (r *Registry) Get(name string) (Connector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connectors[name]
	return c, ok
}
