// Package solcver manages the solc compiler versions the benchmark needs
// through solc-select, covering the pragma range of the dataset.
package solcver

import (
	"context"
	"fmt"
	"log"
	"strings"

	"slitherbench/internal/exec"
)

// Required is the version set covering every pragma in the curated dataset,
// from the 2017-era exploits up to current releases.
var Required = []string{
	"0.4.26",
	"0.5.17",
	"0.6.12",
	"0.7.6",
	"0.8.19",
	"0.8.20",
	"0.8.24",
	"0.8.26",
	"0.8.27",
}

// Available reports whether solc-select is on PATH.
func Available() bool {
	return exec.Available("solc-select")
}

// Installed lists the versions solc-select already has.
func Installed(ctx context.Context) ([]string, error) {
	res, err := exec.Run(ctx, "solc-select", []string{"versions"}, "")
	if err != nil {
		return nil, err
	}
	if res.ExitCode == exec.ExitNotFound {
		return nil, fmt.Errorf("solc-select not found on PATH")
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("solc-select versions failed: %s", strings.TrimSpace(res.Stderr))
	}

	var versions []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		// Lines look like "0.8.24" or "0.8.24 (current, set by ...)".
		v := strings.TrimSpace(line)
		if i := strings.IndexByte(v, ' '); i > 0 {
			v = v[:i]
		}
		if v != "" {
			versions = append(versions, v)
		}
	}
	return versions, nil
}

// Missing returns the required versions not yet installed.
func Missing(installed []string) []string {
	have := make(map[string]bool, len(installed))
	for _, v := range installed {
		have[v] = true
	}
	var missing []string
	for _, v := range Required {
		if !have[v] {
			missing = append(missing, v)
		}
	}
	return missing
}

// InstallMissing installs every missing required version. A single failed
// install is logged and skipped; the rest still get installed.
func InstallMissing(ctx context.Context, logger *log.Logger) ([]string, error) {
	installed, err := Installed(ctx)
	if err != nil {
		return nil, err
	}

	missing := Missing(installed)
	if len(missing) == 0 {
		if logger != nil {
			logger.Printf("all %d required solc versions installed", len(Required))
		}
		return nil, nil
	}

	var done []string
	for _, v := range missing {
		if logger != nil {
			logger.Printf("installing solc %s", v)
		}
		res, err := exec.Run(ctx, "solc-select", []string{"install", v}, "")
		if err != nil {
			return done, err
		}
		if res.ExitCode != 0 {
			if logger != nil {
				logger.Printf("solc %s install failed: %s", v, strings.TrimSpace(res.Stderr))
			}
			continue
		}
		done = append(done, v)
	}
	return done, nil
}
