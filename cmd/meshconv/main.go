// meshconv converts 3D meshes between the DAT, MESH and Wavefront OBJ formats.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshconv/internal/batch"
	"github.com/Faultbox/meshconv/internal/config"
	"github.com/Faultbox/meshconv/internal/convert"
	"github.com/Faultbox/meshconv/internal/logger"
	"github.com/Faultbox/meshconv/pkg/formats"
)

func main() {
	flag.Usage = printUsage
	os.Exit(run())
}

func run() int {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 2
	}

	files, err := expandArgs(config.Files())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if len(files) == 0 {
		printUsage()
		return 2
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	opts, err := convert.OptionsFromConfig(cfg.Convert)
	if err != nil {
		logger.Error("invalid conversion settings", zap.Error(err))
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Batch.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Batch.Timeout)
		defer cancel()
	}

	results := batch.Run(ctx, batch.Config{
		Convert:  opts,
		Workers:  cfg.Batch.Workers,
		Progress: 2 * time.Second,
	}, files)

	if cfg.Batch.Report != "" {
		if err := batch.WriteReport(cfg.Batch.Report, results); err != nil {
			logger.Error("failed to write report", zap.String("path", cfg.Batch.Report), zap.Error(err))
		} else {
			logger.Info("report written", zap.String("path", cfg.Batch.Report))
		}
	}

	summary := batch.Summarize(results)
	summary.Print(os.Stdout)
	if !summary.OK() {
		return 1
	}
	return 0
}

// expandArgs replaces every directory argument with the mesh files it
// contains, sorted by name. Other arguments are kept as given.
func expandArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if _, err := formats.FormatOf(e.Name()); err == nil {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `meshconv - convert meshes between DAT, MESH and OBJ

Usage:
  meshconv [options] <file|dir>...

Without -to, DAT becomes MESH, MESH becomes DAT and OBJ becomes DAT.
Outputs are written next to each source unless -out is given.

Options:`)
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, `
Examples:
  meshconv ship.dat
  meshconv -to obj -out converted models/
  meshconv -workers 4 -report report.yaml -probe-textures *.obj`)
}
