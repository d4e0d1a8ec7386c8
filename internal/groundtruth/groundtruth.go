package groundtruth

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Label is one human-curated expected vulnerability for a contract, together
// with the Slither checks that would count as detecting it.
type Label struct {
	Category    string   `yaml:"category"`
	Description string   `yaml:"description,omitempty"`
	Checks      []string `yaml:"checks"`
}

// Entry ties a contract name to its expected labels. A contract listed with
// no labels is a known-safe contract: anything reported against it is noise.
type Entry struct {
	Contract string  `yaml:"contract"`
	Labels   []Label `yaml:"labels"`
}

type document struct {
	Contracts []Entry `yaml:"contracts"`
}

// Set maps contract name to expected labels. Contracts absent from the set
// carry no expectation at all and contribute nothing to detection rates.
type Set map[string][]Label

// Load reads the ground-truth YAML. A missing file is an empty set, not an
// error: the statistics stage still produces distributions without it.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse ground truth %s: %w", path, err)
	}

	set := make(Set, len(doc.Contracts))
	for _, e := range doc.Contracts {
		if e.Contract == "" {
			continue
		}
		labels := e.Labels
		if labels == nil {
			labels = []Label{}
		}
		set[e.Contract] = labels
	}
	return set, nil
}

// Contains reports whether a contract has a ground-truth entry at all.
func (s Set) Contains(contract string) bool {
	_, ok := s[contract]
	return ok
}

// ExpectedChecks returns the union of all checks any label of the contract
// accepts as a detection.
func (s Set) ExpectedChecks(contract string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, label := range s[contract] {
		for _, c := range label.Checks {
			out[c] = struct{}{}
		}
	}
	return out
}
