// Package bundleproc provides concurrent processing over many source
// bundles or input files.
package bundleproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// ProcessingError represents an error that occurred while processing an input.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ProcessingErrors collects multiple processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d inputs failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker
// count. Bundle work is a mix of file I/O and regex scanning, so
// oversubscribing a little keeps the workers fed.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each input is processed.
type ProgressFunc func()

// ErrorFunc is called when an input fails.
// Receives the input path and the error. If nil, errors are silently skipped.
type ErrorFunc func(path string, err error)

// Map processes inputs in parallel, calling fn for each.
// Results are collected and returned in arbitrary order.
// Errors from individual inputs are silently skipped; use MapCollectErrors
// for error handling.
func Map[T any](paths []string, fn func(string) (T, error)) []T {
	return MapWithProgress(paths, fn, nil)
}

// MapWithProgress processes inputs in parallel with optional progress callback.
func MapWithProgress[T any](paths []string, fn func(string) (T, error), onProgress ProgressFunc) []T {
	return MapN(paths, 0, fn, onProgress, nil)
}

// MapWithErrors processes inputs in parallel with error callback.
// The onError callback is invoked for each input that fails.
func MapWithErrors[T any](paths []string, fn func(string) (T, error), onError ErrorFunc) []T {
	return MapN(paths, 0, fn, nil, onError)
}

// MapN processes inputs with configurable worker count and callbacks.
// If maxWorkers is <= 0, defaults to 2x NumCPU.
func MapN[T any](paths []string, maxWorkers int, fn func(string) (T, error), onProgress ProgressFunc, onError ErrorFunc) []T {
	if len(paths) == 0 {
		return nil
	}

	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	results := make([]T, 0, len(paths))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for _, path := range paths {
		p.Go(func() {
			result, err := fn(path)

			if err != nil {
				if onError != nil {
					onError(path, err)
				}
				if onProgress != nil {
					onProgress()
				}
				return
			}

			if onProgress != nil {
				onProgress()
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		})
	}
	p.Wait()

	return results
}

// MapCollectErrors processes inputs in parallel and collects all errors.
// Returns results and any errors that occurred during processing.
func MapCollectErrors[T any](paths []string, fn func(string) (T, error)) ([]T, *ProcessingErrors) {
	return MapCollectErrorsWithProgress(paths, fn, nil)
}

// MapCollectErrorsWithProgress processes inputs in parallel with progress
// callback and collects errors.
func MapCollectErrorsWithProgress[T any](paths []string, fn func(string) (T, error), onProgress ProgressFunc) ([]T, *ProcessingErrors) {
	if len(paths) == 0 {
		return nil, nil
	}

	maxWorkers := runtime.NumCPU() * DefaultWorkerMultiplier
	results := make([]T, 0, len(paths))
	errs := &ProcessingErrors{}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for _, path := range paths {
		p.Go(func() {
			result, err := fn(path)

			if err != nil {
				errs.Add(path, err)
				if onProgress != nil {
					onProgress()
				}
				return
			}

			if onProgress != nil {
				onProgress()
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		})
	}
	p.Wait()

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

// MapWithContext processes inputs in parallel with context cancellation
// support. Returns results collected before cancellation and any errors
// including context errors.
func MapWithContext[T any](ctx context.Context, paths []string, fn func(string) (T, error)) ([]T, *ProcessingErrors) {
	return MapWithContextAndProgress(ctx, paths, fn, nil)
}

// MapWithContextAndProgress processes inputs with context and progress callback.
func MapWithContextAndProgress[T any](ctx context.Context, paths []string, fn func(string) (T, error), onProgress ProgressFunc) ([]T, *ProcessingErrors) {
	if len(paths) == 0 {
		return nil, nil
	}

	maxWorkers := runtime.NumCPU() * DefaultWorkerMultiplier
	results := make([]T, 0, len(paths))
	errs := &ProcessingErrors{}
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for _, path := range paths {
		p.Go(func(ctx context.Context) error {
			// Check for cancellation before processing
			select {
			case <-ctx.Done():
				errs.Add(path, ctx.Err())
				if onProgress != nil {
					onProgress()
				}
				return ctx.Err()
			default:
			}

			result, err := fn(path)

			if err != nil {
				errs.Add(path, err)
				if onProgress != nil {
					onProgress()
				}
				return nil // Don't stop pool on individual input errors
			}

			if onProgress != nil {
				onProgress()
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}
	_ = p.Wait() // Context errors are already captured in errs

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}
