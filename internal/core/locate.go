package core

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtension is the suffix LocateSource looks for when none is given.
const DefaultExtension = ".csv"

// LocateSource returns the single file in dir whose name ends with ext.
//
// Only direct entries are considered and matching is case-insensitive. When
// several files match, the lexicographically smallest name is returned and
// the other candidates are logged, so repeated runs pick the same file.
func LocateSource(dir, ext string) (string, error) {
	if ext == "" {
		ext = DefaultExtension
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: read directory %s: %v", ErrNoSourceFound, dir, err)
	}

	var candidates []string
	suffix := strings.ToLower(ext)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), suffix) {
			candidates = append(candidates, entry.Name())
		}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no %s file in %s", ErrNoSourceFound, ext, dir)
	}

	sort.Strings(candidates)
	if len(candidates) > 1 {
		slog.Warn("several source files found, using the first in name order",
			"dir", dir,
			"selected", candidates[0],
			"candidates", candidates,
		)
	}

	return filepath.Join(dir, candidates[0]), nil
}

// ResolveSource returns path when set, otherwise the result of LocateSource.
// A path that does not exist or is a directory is reported as ErrNoSourceFound.
func ResolveSource(path, dir, ext string) (string, error) {
	if path == "" {
		return LocateSource(dir, ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s does not exist", ErrNoSourceFound, path)
		}
		return "", fmt.Errorf("%w: stat %s: %v", ErrNoSourceFound, path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrNoSourceFound, path)
	}
	return path, nil
}
