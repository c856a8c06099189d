package confloader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yndnr/confhelper-go/internal/core/domain"
	"github.com/yndnr/confhelper-go/internal/telemetry/logger"
)

// ScanOptions selects files for DirScanner.Scan.
type ScanOptions struct {
	// Roots are the directories to search.
	Roots []string
	// PathPatterns filter on the file's directory relative to its root
	// ("." for the root itself). Empty means any directory.
	PathPatterns []string
	// NamePatterns filter on the base name, e.g. "*.yaml". Empty means any file.
	NamePatterns []string
	// SortByName orders results by base name instead of full path.
	SortByName bool
	// Depth limits recursion: 0 scans only the roots, negative is unlimited.
	Depth int
}

// FileInfo describes a discovered file.
type FileInfo struct {
	Path string
	Name string
}

// DirScanner discovers configuration files on disk.
type DirScanner struct {
	logger logger.Logger
}

// NewDirScanner creates a scanner.
func NewDirScanner(opts ...Option) *DirScanner {
	o := buildOptions(opts)
	return &DirScanner{logger: o.logger}
}

// Scan walks every root and returns the matching regular files, sorted by
// full path, or by base name with the path as tie-break when SortByName is
// set. Missing roots are skipped.
func (s *DirScanner) Scan(opts ScanOptions) ([]FileInfo, error) {
	if err := validatePatterns(opts.PathPatterns); err != nil {
		return nil, err
	}
	if err := validatePatterns(opts.NamePatterns); err != nil {
		return nil, err
	}

	var found []FileInfo
	for _, root := range opts.Roots {
		files, err := s.scanRoot(root, opts)
		if err != nil {
			return nil, err
		}
		found = append(found, files...)
	}

	if opts.SortByName {
		sort.SliceStable(found, func(i, j int) bool {
			if found[i].Name != found[j].Name {
				return found[i].Name < found[j].Name
			}
			return found[i].Path < found[j].Path
		})
	} else {
		sort.SliceStable(found, func(i, j int) bool {
			return found[i].Path < found[j].Path
		})
	}

	s.logger.Debug("configuration files discovered", "roots", opts.Roots, "count", len(found))
	return found, nil
}

func (s *DirScanner) scanRoot(root string, opts ScanOptions) ([]FileInfo, error) {
	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("scan root does not exist", "root", root)
		return nil, nil
	}
	if err != nil {
		return nil, domain.ErrLoad.WithDetailsf("scan %s", root).WithCause(err)
	}
	if !info.IsDir() {
		return nil, domain.ErrLoad.WithDetailsf("scan root %s is not a directory", root)
	}

	var files []FileInfo
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if entry.IsDir() {
			if rel != "." && opts.Depth >= 0 && depthOf(rel) > opts.Depth {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		dir := filepath.Dir(rel)
		if opts.Depth >= 0 && dir != "." && depthOf(dir) > opts.Depth {
			return nil
		}
		if !matchAny(opts.PathPatterns, filepath.ToSlash(dir)) || !matchAny(opts.NamePatterns, entry.Name()) {
			return nil
		}

		files = append(files, FileInfo{Path: path, Name: entry.Name()})
		return nil
	})
	if err != nil {
		return nil, domain.ErrLoad.WithDetailsf("scan %s", root).WithCause(err)
	}
	return files, nil
}

// depthOf counts the directory levels of a relative path: "a" is 1, "a/b" is 2.
func depthOf(rel string) int {
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

func matchAny(patterns []string, s string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, s); ok {
			return true
		}
	}
	return false
}

func validatePatterns(patterns []string) error {
	for _, p := range patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return domain.ErrRuntime.WithDetailsf("bad pattern %q", p).WithCause(err)
		}
	}
	return nil
}
