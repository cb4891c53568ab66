package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/k4bridge/internal/logger"
)

// maxParallelFiles caps how many exports are converted at once in batch mode.
const maxParallelFiles = 8

// FileFunc converts a single export file. Each call owns its own conversion
// state; nothing is shared between calls.
type FileFunc func(ctx context.Context, path string) error

// ConvertFiles runs fn once per input file.
//
// Parameters:
//   - paths:    export files to convert.
//   - parallel: how many files to convert concurrently (0 = min(NumCPU, 8)).
//   - fn:       per-file conversion.
//
// Behavior:
//   - Validates that every file exists before starting any work.
//   - Each file is converted independently and single-threaded inside fn.
//   - If any file returns an error, cancels the rest and returns that error.
func ConvertFiles(ctx context.Context, paths []string, parallel int, fn FileFunc) error {
	if len(paths) == 0 {
		return fmt.Errorf("no input files given")
	}

	var missing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				missing = append(missing, p)
			} else {
				return fmt.Errorf("stat failed for %s: %w", p, err)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing input files: %s", strings.Join(missing, ", "))
	}

	maxParallel := maxParallelFiles
	if parallel > 0 {
		if parallel < maxParallel {
			maxParallel = parallel
		}
	} else if c := runtime.NumCPU(); c < maxParallel {
		maxParallel = c
	}

	logger.L().Info().Int("files", len(paths)).Int("max_parallel", maxParallel).Msg("conversion batch start")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for i, p := range paths {
		idx := i
		path := p
		g.Go(func() error {
			start := time.Now()
			base := filepath.Base(path)
			logger.L().Info().Int("idx", idx+1).Int("total", len(paths)).Str("file", base).Msg("file start")

			if err := fn(gctx, path); err != nil {
				logger.L().Error().Str("file", base).Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", path, err)
			}

			logger.L().Info().Int("idx", idx+1).Int("total", len(paths)).Str("file", base).Dur("elapsed", time.Since(start)).Msg("file done")
			return nil
		})
	}

	return g.Wait()
}
