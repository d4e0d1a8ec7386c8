package model

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var pragmaRe = regexp.MustCompile(`(?im)^\s*pragma\s+solidity\s+([^;]+);`)

// Contract is one Solidity source file under test.
type Contract struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Pragma string `json:"pragma,omitempty"`
}

// LoadContract validates the path and extracts the compiler requirement.
func LoadContract(path string) (Contract, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Contract{}, err
	}
	if _, err := os.Stat(abs); err != nil {
		return Contract{}, fmt.Errorf("contract not found: %s", abs)
	}
	if filepath.Ext(abs) != ".sol" {
		return Contract{}, fmt.Errorf("unsupported file type: %s", abs)
	}

	c := Contract{
		Path: abs,
		Name: strings.TrimSuffix(filepath.Base(abs), ".sol"),
	}
	if src, err := os.ReadFile(abs); err == nil {
		if m := pragmaRe.FindSubmatch(src); m != nil {
			c.Pragma = strings.TrimSpace(string(m[1]))
		}
	}
	return c, nil
}

// PragmaVersions extracts all pragma requirements from a source text.
func PragmaVersions(source string) []string {
	var vers []string
	for _, m := range pragmaRe.FindAllStringSubmatch(source, -1) {
		vers = append(vers, strings.TrimSpace(m[1]))
	}
	return vers
}
