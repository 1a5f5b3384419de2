// Package batch converts many files with a worker pool.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshconv/internal/convert"
	"github.com/Faultbox/meshconv/internal/logger"
)

// Config holds all shared settings for a batch run.
type Config struct {
	Convert convert.Options
	Workers int

	// Progress is the interval between progress log lines. Zero disables
	// progress reporting.
	Progress time.Duration
}

// Run converts files using a worker pool and returns one result per file,
// in input order. Once ctx is done no new job is started; files that were
// never started get a result carrying the context error.
func Run(ctx context.Context, cfg Config, files []string) []convert.Result {
	total := len(files)
	results := make([]convert.Result, total)
	started := make([]bool, total)
	var processed atomic.Int64

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > total {
		workers = total
	}

	for out, srcs := range duplicateOutputs(files, cfg.Convert) {
		logger.Warn("several sources share one output, the last to finish wins",
			zap.String("output", out),
			zap.Strings("sources", srcs),
		)
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Progress)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if p := processed.Load(); p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						logger.Sugar.Infof("[%d/%d] %.1f files/sec", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res, err := convert.File(ctx, files[idx], cfg.Convert)
				if err != nil {
					logger.ForFile(files[idx]).Error("conversion failed", zap.Error(err))
				}
				results[idx] = res
				processed.Add(1)
			}
		}()
	}

	// Send work until cancelled
send:
	for i := range files {
		select {
		case <-ctx.Done():
			break send
		case jobs <- i:
			started[i] = true
		}
	}
	close(jobs)

	wg.Wait()
	close(done)

	for i, ok := range started {
		if !ok {
			results[i] = convert.Result{
				Source: files[i],
				Error:  fmt.Sprintf("not started: %v", context.Cause(ctx)),
			}
		}
	}

	logger.Debug("batch finished",
		zap.Int("files", total),
		zap.Int64("processed", processed.Load()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results
}

// duplicateOutputs maps each output path claimed by more than one source to
// those sources. Paths are compared case-insensitively.
func duplicateOutputs(files []string, opts convert.Options) map[string][]string {
	claims := make(map[string][]string)
	first := make(map[string]string)
	for _, src := range files {
		out, err := convert.OutputFor(src, opts)
		if err != nil {
			continue
		}
		key := strings.ToLower(filepath.Clean(out))
		if _, ok := first[key]; !ok {
			first[key] = out
		}
		claims[key] = append(claims[key], src)
	}

	dups := make(map[string][]string)
	for key, srcs := range claims {
		if len(srcs) > 1 {
			dups[first[key]] = srcs
		}
	}
	return dups
}
