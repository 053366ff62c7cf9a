// Package ruleset loads simulation scenarios (dice, weights, roll counts and
// scripted events) from YAML content files.
package ruleset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/montecarlo/internal/game/dice"
)

// WeightDef overrides the weight of one face.
type WeightDef struct {
	Face   any `yaml:"face"`
	Weight any `yaml:"weight"`
}

// DieDef describes one die, or several identical dice.
//
// Precondition: exactly one of Expression or Faces is set.
type DieDef struct {
	// Expression is a uniform dice expression such as "3d6"; it yields
	// Expression.Count dice per copy.
	Expression string `yaml:"expression"`
	// Faces lists the faces of a single die.
	Faces   []any       `yaml:"faces"`
	Weights []WeightDef `yaml:"weights"`
	// Count is the number of copies of this definition; 0 means 1.
	Count int `yaml:"count"`
}

// EventDef is a named Lua event counted over every roll of a play.
type EventDef struct {
	Name   string `yaml:"name"`
	Script string `yaml:"script"`
}

// Scenario is a reusable simulation setup.
type Scenario struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Rolls       int        `yaml:"rolls"` // 0 = configured default
	Dice        []DieDef   `yaml:"dice"`
	Events      []EventDef `yaml:"events"`
}

// Validate checks the structural invariants of s. Face and weight values are
// checked by BuildDice.
//
// Postcondition: Returns nil iff ID is non-empty, at least one die is defined,
// every die sets exactly one of expression or faces, counts and rolls are
// non-negative, and event names are non-empty and unique.
func (s *Scenario) Validate() error {
	if s.ID == "" {
		return errors.New("scenario: id must not be empty")
	}
	if len(s.Dice) == 0 {
		return fmt.Errorf("scenario %q: at least one die is required", s.ID)
	}
	if s.Rolls < 0 {
		return fmt.Errorf("scenario %q: rolls must be >= 0, got %d", s.ID, s.Rolls)
	}
	for i, d := range s.Dice {
		if (d.Expression == "") == (len(d.Faces) == 0) {
			return fmt.Errorf("scenario %q: die[%d] must set exactly one of expression or faces", s.ID, i)
		}
		if d.Count < 0 {
			return fmt.Errorf("scenario %q: die[%d] count must be >= 0, got %d", s.ID, i, d.Count)
		}
	}
	seen := make(map[string]bool, len(s.Events))
	for i, ev := range s.Events {
		if ev.Name == "" {
			return fmt.Errorf("scenario %q: event[%d] name must not be empty", s.ID, i)
		}
		if strings.TrimSpace(ev.Script) == "" {
			return fmt.Errorf("scenario %q: event %q script must not be empty", s.ID, ev.Name)
		}
		if seen[ev.Name] {
			return fmt.Errorf("scenario %q: duplicate event %q", s.ID, ev.Name)
		}
		seen[ev.Name] = true
	}
	return nil
}

// DisplayName returns Name, falling back to ID.
func (s *Scenario) DisplayName() string {
	if s.Name == "" {
		return s.ID
	}
	return s.Name
}

// BuildDice creates the scenario's dice in definition order. Every die is a
// distinct instance, so weights can later be changed per die.
//
// Postcondition: Returns the dice, or the first dice construction error
// (wrapping a simerr kind).
func (s *Scenario) BuildDice(opts ...dice.Option) ([]*dice.Die, error) {
	var out []*dice.Die
	for i, def := range s.Dice {
		copies := def.Count
		if copies == 0 {
			copies = 1
		}
		for range copies {
			ds, err := def.build(opts...)
			if err != nil {
				return nil, fmt.Errorf("scenario %q: die[%d]: %w", s.ID, i, err)
			}
			out = append(out, ds...)
		}
	}
	return out, nil
}

func (def DieDef) build(opts ...dice.Option) ([]*dice.Die, error) {
	var ds []*dice.Die
	if def.Expression != "" {
		expr, err := dice.Parse(def.Expression)
		if err != nil {
			return nil, err
		}
		if ds, err = expr.Build(opts...); err != nil {
			return nil, err
		}
	} else {
		d, err := dice.FromValues(def.Faces, opts...)
		if err != nil {
			return nil, err
		}
		ds = []*dice.Die{d}
	}

	for _, w := range def.Weights {
		face, err := dice.ParseFace(w.Face)
		if err != nil {
			return nil, err
		}
		for _, d := range ds {
			if err := d.SetWeightValue(face, w.Weight); err != nil {
				return nil, err
			}
		}
	}
	return ds, nil
}

// LoadScenarioFromBytes parses a single scenario from raw YAML bytes.
//
// Postcondition: Returns a validated *Scenario, or an error.
func LoadScenarioFromBytes(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScenarios reads all .yaml and .yml files in dir.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all scenarios or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadScenarios(dir string) ([]*Scenario, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	scenarios := make([]*Scenario, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		s, err := LoadScenarioFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
