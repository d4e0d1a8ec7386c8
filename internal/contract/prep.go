package contract

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"slitherbench/internal/model"
)

// Etherscan serves verified multi-file contracts as Standard JSON Input,
// sometimes saved verbatim into a .sol file. Those blobs have to be unpacked
// into real source files before Slither can compile them.

// IsStandardJSONFile reports whether a .sol file is actually a Standard JSON
// blob: the first non-comment, non-whitespace character is '{'.
func IsStandardJSONFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	inBlock := false
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			continue
		}
		if inBlock {
			if idx := strings.Index(s, "*/"); idx >= 0 {
				inBlock = false
				after := strings.TrimSpace(s[idx+2:])
				if after != "" && !strings.HasPrefix(after, "//") {
					return after[0] == '{'
				}
			}
			continue
		}
		if strings.HasPrefix(s, "/*") {
			if idx := strings.Index(s, "*/"); idx >= 0 {
				after := strings.TrimSpace(s[idx+2:])
				if after != "" && !strings.HasPrefix(after, "//") {
					return after[0] == '{'
				}
			} else {
				inBlock = true
			}
			continue
		}
		if strings.HasPrefix(s, "//") {
			continue
		}
		return s[0] == '{'
	}
	return false
}

type standardJSON struct {
	Sources map[string]struct {
		Content string `json:"content"`
	} `json:"sources"`
}

// ExtractStandardJSON unpacks an embedded Standard JSON blob into a fresh
// directory under tmpDir and returns that directory. Comment headers before
// the JSON and Etherscan's double-brace wrapping are both handled.
func ExtractStandardJSON(path, tmpDir string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := string(raw)

	start := strings.Index(text, "{{")
	if start == -1 {
		start = strings.Index(text, "{")
	}
	if start == -1 {
		return "", fmt.Errorf("no JSON found in %s", path)
	}
	text = strings.TrimSpace(text[start:])
	if strings.HasPrefix(text, "{{") && strings.HasSuffix(text, "}}") {
		text = text[1 : len(text)-1]
	}

	var data standardJSON
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return "", fmt.Errorf("invalid standard JSON in %s: %w", path, err)
	}

	dir := filepath.Join(tmpDir, "slither-extract-"+uuid.NewString()[:8])
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	for rel, obj := range data.Sources {
		out := filepath.Join(dir, sanitizeRel(rel))
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return "", err
		}
		if err := os.WriteFile(out, []byte(obj.Content), 0644); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// sanitizeRel strips drive letters, absolute prefixes and backslashes from a
// source key so it stays inside the extraction directory.
func sanitizeRel(rel string) string {
	rel = strings.ReplaceAll(rel, "\\", "/")
	if i := strings.Index(rel, ":"); i >= 0 && i < 3 {
		rel = rel[i+1:]
	}
	rel = strings.TrimLeft(rel, "/")
	if rel == "" {
		return "Main.sol"
	}
	return rel
}

// SelectMainContract picks the file Slither should target inside an
// extracted project: concrete contracts only, helper files filtered out,
// name matches preferred, largest file as the tiebreak.
func SelectMainContract(dir, originalName string) (string, error) {
	var all []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), ".sol") {
			all = append(all, path)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if len(all) == 0 {
		return "", fmt.Errorf("no .sol files under %s", dir)
	}
	sort.Strings(all)

	contractRe := regexp.MustCompile(`\bcontract\s+\w+`)
	var concrete []string
	for _, f := range all {
		src, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		text := string(src)
		if strings.Contains(text, "abstract contract") ||
			strings.Contains(text, "interface ") ||
			strings.Contains(text, "library ") {
			continue
		}
		if contractRe.MatchString(text) {
			concrete = append(concrete, f)
		}
	}

	excluded := []string{"helper", "util", "library", "interface", "error", "storage"}
	var filtered []string
	for _, f := range concrete {
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(f), ".sol"))
		skip := false
		for _, pat := range excluded {
			if strings.Contains(stem, pat) {
				skip = true
				break
			}
		}
		if !skip {
			filtered = append(filtered, f)
		}
	}

	candidates := filtered
	if len(candidates) == 0 {
		candidates = concrete
	}
	if len(candidates) == 0 {
		return largestFile(all), nil
	}

	target := strings.ToLower(originalName)
	target = strings.NewReplacer("_", "", "-", "").Replace(target)

	best := ""
	bestScore := 0
	var bestSize int64
	for _, f := range candidates {
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(f), ".sol"))
		stem = strings.NewReplacer("_", "", "-", "").Replace(stem)
		score := matchScore(stem, target)
		size := fileSize(f)
		if score > bestScore || (score == bestScore && score > 0 && size > bestSize) {
			best, bestScore, bestSize = f, score, size
		}
	}
	if bestScore > 0 {
		return best, nil
	}
	return largestFile(candidates), nil
}

func matchScore(stem, target string) int {
	if stem == "" || target == "" {
		return 0
	}
	if strings.Contains(target, stem) {
		return len(stem)
	}
	if strings.Contains(stem, target) {
		return len(target)
	}
	common := 0
	for i := 0; i < len(stem) && i < len(target); i++ {
		if stem[i] != target[i] {
			break
		}
		common++
	}
	if common >= 4 {
		return common
	}
	return 0
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func largestFile(files []string) string {
	best := files[0]
	var bestSize int64 = -1
	for _, f := range files {
		if s := fileSize(f); s > bestSize {
			best, bestSize = f, s
		}
	}
	return best
}

// GatherPragmas collects pragma requirements from a set of Solidity files.
func GatherPragmas(files []string) []string {
	var vers []string
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		vers = append(vers, model.PragmaVersions(string(src))...)
	}
	return vers
}

var exactVersionRe = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// DefaultSolcVersion is the modern fallback when pragmas allow it.
const DefaultSolcVersion = "0.8.24"

// LegacySolcVersion handles pre-0.5.0 syntax.
const LegacySolcVersion = "0.4.26"

// GuessSolcVersion selects a compiler for a contract set. Pre-0.5.0 syntax
// tokens force a legacy compiler; flexible pragmas (^0.8.x, >=) take the
// modern default; exact pragmas win as-is.
func GuessSolcVersion(pragmas []string, files []string) string {
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		text := string(src)
		for _, tok := range []string{" throw;", "sha3(", "suicide(", "function()"} {
			if strings.Contains(text, tok) {
				return LegacySolcVersion
			}
		}
	}

	for _, p := range pragmas {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, "^") {
			ver := strings.TrimSpace(strings.TrimPrefix(p, "^"))
			parts := strings.Split(ver, ".")
			if len(parts) >= 2 && parts[0] == "0" {
				if minor, err := strconv.Atoi(parts[1]); err == nil && minor >= 8 {
					return DefaultSolcVersion
				}
			}
		} else if strings.HasPrefix(p, ">=") || strings.HasPrefix(p, ">") {
			return DefaultSolcVersion
		}
	}

	var exact []string
	for _, p := range pragmas {
		p = strings.TrimSpace(p)
		if exactVersionRe.MatchString(p) {
			exact = append(exact, p)
		}
	}
	if len(exact) > 0 {
		sort.Slice(exact, func(i, j int) bool {
			return versionLess(exact[j], exact[i])
		})
		return exact[0]
	}

	return DefaultSolcVersion
}

func versionLess(a, b string) bool {
	pa := strings.Split(a, ".")
	pb := strings.Split(b, ".")
	for i := 0; i < len(pa) && i < len(pb); i++ {
		na, _ := strconv.Atoi(pa[i])
		nb, _ := strconv.Atoi(pb[i])
		if na != nb {
			return na < nb
		}
	}
	return len(pa) < len(pb)
}
