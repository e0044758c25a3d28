// Package ingest discovers order documents on disk, either by walking a
// directory once or by watching inbox directories for new files.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/async"
)

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned  uint32
	Matched  uint32
	Enqueued uint32
	Failed   uint32
}

// AllowedExt checks if a file extension is in the allowed set.
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// ScanDirectory walks root and returns the order documents under it in
// lexical order, skipping hidden entries if requested.
func ScanDirectory(root string, skipHidden bool) ([]string, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var (
		paths []string
		stats DirStats
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return paths, stats, fmt.Errorf("walk: %w", err)
	}
	return paths, stats, nil
}

// EnqueueDirectory scans root and hands every document to q.
func EnqueueDirectory(ctx context.Context, q async.Queue, root string, skipHidden bool) (DirStats, error) {
	paths, stats, err := ScanDirectory(root, skipHidden)
	if err != nil {
		return stats, err
	}
	for _, p := range paths {
		if err := q.Enqueue(ctx, async.Job{Path: p}); err != nil {
			stats.Failed++
			if ctx.Err() != nil {
				return stats, err
			}
			continue
		}
		stats.Enqueued++
	}
	return stats, nil
}
