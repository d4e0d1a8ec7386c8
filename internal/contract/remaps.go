package contract

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var importRe = regexp.MustCompile(`import\s+.*?"([^"]+)"`)

var commonSourceDirs = []string{"src", "contracts", "lib"}

// AutoDetectRemaps scans an extracted project for import aliases
// (e.g. "@openzeppelin/", "solmate/") and maps each to the directory it was
// extracted into, so Slither can resolve non-relative imports.
func AutoDetectRemaps(extractedDir string) []string {
	if _, err := os.Stat(extractedDir); err != nil {
		return nil
	}

	var remaps []string
	for _, name := range commonSourceDirs {
		dir := filepath.Join(extractedDir, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			remaps = append(remaps, name+"/="+dir+string(filepath.Separator))
		}
	}

	aliases := map[string]struct{}{}
	_ = filepath.Walk(extractedDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !strings.HasSuffix(info.Name(), ".sol") {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		for _, m := range importRe.FindAllStringSubmatch(string(src), -1) {
			imp := m[1]
			if strings.HasPrefix(imp, "./") || strings.HasPrefix(imp, "../") {
				continue
			}
			if i := strings.Index(imp, "/"); i > 0 {
				alias := imp[:i]
				known := false
				for _, d := range commonSourceDirs {
					if alias == d {
						known = true
						break
					}
				}
				if !known {
					aliases[alias] = struct{}{}
				}
			}
		}
		return nil
	})

	sorted := make([]string, 0, len(aliases))
	for a := range aliases {
		sorted = append(sorted, a)
	}
	sort.Strings(sorted)

	for _, alias := range sorted {
		candidates := []string{
			filepath.Join(extractedDir, "lib", alias),
			filepath.Join(extractedDir, "node_modules", alias),
			filepath.Join(extractedDir, alias),
		}
		for _, c := range candidates {
			if info, err := os.Stat(c); err == nil && info.IsDir() {
				remaps = append(remaps, alias+"="+c)
				break
			}
		}
	}
	return remaps
}

// TranslateRemapsForDocker rewrites host-absolute remap targets to paths
// under the container mount point. Remaps outside the mounted root are
// dropped.
func TranslateRemapsForDocker(remaps []string, hostRoot, mountPoint string) []string {
	var out []string
	for _, remap := range remaps {
		alias, path, ok := strings.Cut(remap, "=")
		if !ok {
			continue
		}
		rel, err := filepath.Rel(hostRoot, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		out = append(out, alias+"="+mountPoint+"/"+filepath.ToSlash(rel))
	}
	return out
}
