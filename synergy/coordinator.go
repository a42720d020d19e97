// Package synergy registers declared collaboration groupings of agents. A
// synergy records structural membership and strategy parameters only; no
// negotiation rounds, voting or convergence logic executes here. A real
// round-based protocol is future scope, for which each synergy carries an
// initially empty shared-context map.
package synergy

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cogfoundry/forge/core"
	"github.com/cogfoundry/forge/logging"
	"github.com/cogfoundry/forge/registry"
)

// Options configure the coordinator.
type Options struct {
	// Enabled gates synergy creation; disabled coordinators reject every
	// CreateSynergy call.
	Enabled bool
	Logger  logging.Logger
}

// Coordinator owns all Synergy instances for one forge.
type Coordinator struct {
	mu        sync.RWMutex
	synergies map[string]*core.Synergy

	registry *registry.Registry
	enabled  bool
	logger   logging.Logger
}

// NewCoordinator constructs a coordinator validating participants against the
// given registry.
func NewCoordinator(reg *registry.Registry, optFns ...func(o *Options)) *Coordinator {
	opts := Options{Enabled: true, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Coordinator{
		synergies: make(map[string]*core.Synergy),
		registry:  reg,
		enabled:   opts.Enabled,
		logger:    opts.Logger,
	}
}

// CreateSynergy registers a collaboration grouping across existing agents.
// Fails with ErrCollaborationDisabled when collaboration is turned off, and
// with NotFoundError naming the first missing agent id when any participant
// does not exist.
func (c *Coordinator) CreateSynergy(agentIDs []string, collaborationType core.CollaborationType, strategy core.Metadata) (*core.Synergy, error) {
	if !c.enabled {
		return nil, core.ErrCollaborationDisabled
	}
	for _, id := range agentIDs {
		if _, err := c.registry.GetAgent(id); err != nil {
			var notFound *core.NotFoundError
			if errors.As(err, &notFound) {
				return nil, notFound
			}
			return nil, err
		}
	}

	s := &core.Synergy{
		ID:            core.NewID("synergy"),
		AgentIDs:      append([]string(nil), agentIDs...),
		Type:          collaborationType,
		Strategy:      strategy.Clone(),
		SharedContext: core.Metadata{},
		Created:       time.Now().UTC(),
	}

	c.mu.Lock()
	c.synergies[s.ID] = s
	c.mu.Unlock()

	c.logger.Info("synergy created", "synergy_id", s.ID, "type", string(collaborationType), "participants", len(agentIDs))
	return s.Clone(), nil
}

// GetSynergy returns a clone of a registered synergy.
func (c *Coordinator) GetSynergy(id string) (*core.Synergy, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.synergies[id]
	if !ok {
		return nil, &core.NotFoundError{Kind: "synergy", ID: id}
	}
	return s.Clone(), nil
}

// ListSynergies returns clones of all synergies ordered by creation time.
func (c *Coordinator) ListSynergies() []*core.Synergy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*core.Synergy, 0, len(c.synergies))
	for _, s := range c.synergies {
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// Count returns the number of registered synergies.
func (c *Coordinator) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.synergies)
}
