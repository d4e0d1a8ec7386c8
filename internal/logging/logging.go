package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// New builds a logger that writes to a timestamped file under logDir, and
// also to stderr when verbose is set. The returned closer owns the file
// handle. If the file cannot be created the logger still works on stderr
// alone.
func New(name, logDir string, verbose bool) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return log.New(os.Stderr, "", log.LstdFlags), nopCloser{}, err
	}

	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(logDir, fmt.Sprintf("%s_%s.log", name, stamp))
	f, err := os.Create(path)
	if err != nil {
		return log.New(os.Stderr, "", log.LstdFlags), nopCloser{}, err
	}

	var w io.Writer = f
	if verbose {
		w = io.MultiWriter(os.Stderr, f)
	}
	return log.New(w, "", log.LstdFlags), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
