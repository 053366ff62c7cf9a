package ruleset

import (
	"errors"
	"fmt"
	"sort"
)

// ErrScenarioNotFound is returned when a scenario ID is not registered.
var ErrScenarioNotFound = errors.New("scenario not found")

// Registry provides lookup of scenarios by ID.
type Registry struct {
	scenarios map[string]*Scenario
}

// NewRegistry indexes scenarios by ID.
//
// Postcondition: fails when two scenarios share an ID.
func NewRegistry(scenarios []*Scenario) (*Registry, error) {
	r := &Registry{scenarios: make(map[string]*Scenario, len(scenarios))}
	for _, s := range scenarios {
		if _, dup := r.scenarios[s.ID]; dup {
			return nil, fmt.Errorf("duplicate scenario id %q", s.ID)
		}
		r.scenarios[s.ID] = s
	}
	return r, nil
}

// Get returns the scenario with the given ID.
func (r *Registry) Get(id string) (*Scenario, error) {
	s, ok := r.scenarios[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrScenarioNotFound, id)
	}
	return s, nil
}

// IDs returns every registered ID in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.scenarios))
	for id := range r.scenarios {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
