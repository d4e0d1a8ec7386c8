package contract

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"slitherbench/internal/model"
)

// Ignored directories (exact match on folder name)
var ignoredDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"artifacts":    {},
	"cache":        {},
	".venv":        {},
	"venv":         {},
	"tmp":          {},
}

// Discover walks root for Solidity sources, skipping ignored directories,
// and returns contracts in deterministic (sorted) order.
func Discover(root string) ([]model.Contract, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var paths []string
	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if _, ok := ignoredDirs[info.Name()]; ok {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(strings.ToLower(info.Name()), ".sol") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	contracts := make([]model.Contract, 0, len(paths))
	for _, p := range paths {
		c, err := model.LoadContract(p)
		if err != nil {
			continue
		}
		contracts = append(contracts, c)
	}
	return contracts, nil
}
