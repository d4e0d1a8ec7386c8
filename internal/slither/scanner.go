package slither

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"slitherbench/internal/contract"
	"slitherbench/internal/exec"
	"slitherbench/internal/model"
)

// Tool is the analyzer name used in file names and report metadata.
const Tool = "slither"

// Options configures one Slither invocation.
type Options struct {
	RawDir      string
	ParsedDir   string
	TmpDir      string
	UseDocker   bool
	DockerImage string
	ExtraRemaps []string
	Logger      *log.Logger
}

func (o Options) logf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger.Printf(format, args...)
	}
}

// Available reports whether the analyzer can run at all in the requested
// mode.
func Available(useDocker bool) bool {
	if useDocker {
		return exec.Available("docker")
	}
	return exec.Available("slither")
}

// Scan runs Slither against one contract: preprocess the source, pick a
// compiler, invoke the tool, persist raw output, parse, persist parsed.
// A driver-level failure (missing tool, timeout) returns an error and the
// caller skips the contract; malformed tool output is not an error.
func Scan(ctx context.Context, c model.Contract, opts Options) (model.ParsedResult, error) {
	target, remaps, err := prepare(c, opts)
	if err != nil {
		return model.ParsedResult{}, err
	}

	files := []string{target}
	if info, statErr := os.Stat(target); statErr == nil && info.IsDir() {
		files = solFiles(target)
	}
	pragmas := contract.GatherPragmas(files)
	version := contract.GuessSolcVersion(pragmas, files)
	opts.logf("selecting solc %s for %s", version, c.Name)

	var res exec.Result
	var runErr error
	if opts.UseDocker {
		res, runErr = runDocker(ctx, target, version, remaps, opts)
	} else {
		res, runErr = runLocal(ctx, target, version, remaps, opts)
	}

	// Persist raw output before deciding anything else; stderr only when
	// there is something to keep.
	run := model.RunResult{
		Contract:      c.Name,
		ContractPath:  c.Path,
		Tool:          Tool,
		ExecutionTime: res.Duration.Seconds(),
	}
	if res.Stdout != "" {
		rawPath := filepath.Join(opts.RawDir, c.Name+"_"+Tool+".json")
		if err := os.MkdirAll(opts.RawDir, 0755); err == nil {
			if os.WriteFile(rawPath, []byte(res.Stdout), 0644) == nil {
				run.RawPath = rawPath
			}
		}
	}
	if res.Stderr != "" {
		errPath := filepath.Join(opts.RawDir, c.Name+"_"+Tool+"_errors.txt")
		if err := os.MkdirAll(opts.RawDir, 0755); err == nil {
			if os.WriteFile(errPath, []byte(res.Stderr), 0644) == nil {
				run.StderrPath = errPath
			}
		}
	}

	switch res.ExitCode {
	case exec.ExitNotFound:
		run.ErrorMessage = "slither executable not found"
		_ = WriteRun(opts.RawDir, run)
		return model.ParsedResult{}, fmt.Errorf("slither executable not found: %w", runErr)
	case exec.ExitTimeout:
		run.ErrorMessage = fmt.Sprintf("timed out after %s", res.Duration.Round(time.Second))
		_ = WriteRun(opts.RawDir, run)
		return model.ParsedResult{}, fmt.Errorf("slither timed out after %s", res.Duration.Round(time.Second))
	}

	run.Success = true
	_ = WriteRun(opts.RawDir, run)

	// Slither exits non-zero when it reports findings, so anything past the
	// driver-level failures above is parsed regardless of exit status.
	parsed := model.ParsedResult{
		Contract:      c.Name,
		Tool:          Tool,
		ExecutionTime: res.Duration.Seconds(),
		Analysis:      Parse(res.Stdout),
	}

	if err := WriteParsed(opts.ParsedDir, parsed); err != nil {
		return parsed, fmt.Errorf("save parsed result: %w", err)
	}
	opts.logf("%s: %d findings in %.2fs", c.Name, parsed.Analysis.TotalFindings, parsed.ExecutionTime)
	return parsed, nil
}

// prepare resolves the path Slither should target. Standard-JSON blobs are
// unpacked and the main concrete contract selected; plain sources pass
// through untouched.
func prepare(c model.Contract, opts Options) (string, []string, error) {
	remaps := append([]string(nil), opts.ExtraRemaps...)

	if !contract.IsStandardJSONFile(c.Path) {
		return c.Path, remaps, nil
	}

	opts.logf("detected standard JSON-in-.sol for %s; extracting sources", c.Name)
	extracted, err := contract.ExtractStandardJSON(c.Path, opts.TmpDir)
	if err != nil {
		return "", nil, fmt.Errorf("extract standard JSON: %w", err)
	}

	auto := contract.AutoDetectRemaps(extracted)
	if len(auto) > 0 {
		opts.logf("auto-detected %d remap(s) for %s", len(auto), c.Name)
	}
	remaps = append(auto, remaps...)

	main, err := contract.SelectMainContract(extracted, c.Name)
	if err != nil {
		// Fall back to the whole extracted tree.
		return extracted, remaps, nil
	}
	opts.logf("using main contract %s", filepath.Base(main))
	return main, remaps, nil
}

func runLocal(ctx context.Context, target, version string, remaps []string, opts Options) (exec.Result, error) {
	// Best effort; slither falls back to whatever solc is active.
	_, _ = exec.Run(ctx, "solc-select", []string{"use", version}, "")

	args := []string{target, "--json", "-"}
	if len(remaps) > 0 {
		args = append(args, "--solc-remaps", strings.Join(remaps, " "))
	}
	return exec.Run(ctx, "slither", args, "")
}

func runDocker(ctx context.Context, target, version string, remaps []string, opts Options) (exec.Result, error) {
	mountRoot := target
	containerTarget := "."
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		mountRoot = filepath.Dir(target)
		containerTarget = filepath.Base(target)
	}
	abs, err := filepath.Abs(mountRoot)
	if err != nil {
		return exec.Result{}, err
	}

	dockerRemaps := contract.TranslateRemapsForDocker(remaps, abs, "/share")
	remapArg := ""
	if len(dockerRemaps) > 0 {
		remapArg = fmt.Sprintf(" --solc-remaps '%s'", strings.Join(dockerRemaps, " "))
	}

	// Keep solc-select chatter on stderr so stdout stays pure JSON.
	script := fmt.Sprintf(
		"(solc-select use %s >&2 || (solc-select install %s >&2 && solc-select use %s >&2)) && slither %s --json -%s",
		version, version, version, containerTarget, remapArg)

	args := []string{
		"run", "--rm",
		"-v", abs + ":/share",
		"-w", "/share",
		"--user", "root",
		opts.DockerImage,
		"/bin/bash", "-c", script,
	}
	return exec.Run(ctx, "docker", args, "")
}

func solFiles(dir string) []string {
	var files []string
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() && strings.HasSuffix(info.Name(), ".sol") {
			files = append(files, path)
		}
		return nil
	})
	return files
}
