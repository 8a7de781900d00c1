// Package batch implements -hide's glob-pattern input mode: expanding a
// wildcard carrier pattern into a file list and hiding the same message
// into each match concurrently, using a bounded worker pool.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/vilshansen/ecap-go/ecap"
)

// ExpandInputPath takes a path or a glob pattern and returns the list
// of carrier files it matches. A plain path that exists is returned
// as a single-element slice without touching the filesystem's glob
// matcher.
func ExpandInputPath(inputPattern string) ([]string, error) {
	if !strings.ContainsAny(inputPattern, "*?[]") {
		if _, err := os.Stat(inputPattern); err != nil {
			return nil, fmt.Errorf("input file does not exist: %w", err)
		}
		return []string{inputPattern}, nil
	}

	matches, err := filepath.Glob(inputPattern)
	if err != nil {
		return nil, fmt.Errorf("error during expansion of wildcard pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no match found for pattern: %s", inputPattern)
	}
	return matches, nil
}

// Result is one input file's outcome.
type Result struct {
	CarrierPath string
	OutPath     string
	Err         error
}

// HideAll embeds plaintext into every file matched by carrierPattern,
// writing each result under outDir with the original base name, using
// poolSize concurrent workers. Each output file is written to a
// uuid-suffixed temp name in outDir and renamed into place, so a
// crash mid-write never leaves a half-written carrier at its final
// path.
func HideAll(carrierPattern, outDir string, plaintext, password []byte, poolSize int, opts ...ecap.Option) ([]Result, error) {
	paths, err := ExpandInputPath(carrierPattern)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(paths))

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to start worker pool: %w", err)
	}
	defer pool.Release()

	done := make(chan struct{}, len(paths))
	for i, path := range paths {
		i, path := i, path
		submitErr := pool.Submit(func() {
			results[i] = hideOne(path, outDir, plaintext, password, opts)
			done <- struct{}{}
		})
		if submitErr != nil {
			results[i] = Result{CarrierPath: path, Err: fmt.Errorf("failed to submit job: %w", submitErr)}
			done <- struct{}{}
		}
	}
	for range paths {
		<-done
	}
	return results, nil
}

func hideOne(carrierPath, outDir string, plaintext, password []byte, opts []ecap.Option) Result {
	carrier, err := os.ReadFile(carrierPath)
	if err != nil {
		return Result{CarrierPath: carrierPath, Err: fmt.Errorf("failed to read carrier: %w", err)}
	}

	out, err := ecap.Encode(carrier, filepath.Ext(carrierPath), plaintext, password, opts...)
	if err != nil {
		return Result{CarrierPath: carrierPath, Err: err}
	}

	finalPath := filepath.Join(outDir, filepath.Base(carrierPath))
	tmpPath := filepath.Join(outDir, fmt.Sprintf(".ecap-%s.tmp", uuid.NewString()))

	if err := os.WriteFile(tmpPath, out, 0o644); err != nil {
		return Result{CarrierPath: carrierPath, Err: fmt.Errorf("failed to write temp output: %w", err)}
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return Result{CarrierPath: carrierPath, Err: fmt.Errorf("failed to rename into place: %w", err)}
	}
	return Result{CarrierPath: carrierPath, OutPath: finalPath}
}
