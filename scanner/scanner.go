// Package scanner finds rule files below a directory.
package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FileInfo describes a file found by Scan.
type FileInfo struct {
	Path string
	Size int64
}

type Scanner struct {
	rootDir    string
	extensions []string
	maxSize    int64
	skipped    []string
}

// New creates a Scanner for files below rootDir ending in one of
// extensions, or for every file when no extension is given.
func New(rootDir string, extensions ...string) *Scanner {
	return &Scanner{
		rootDir:    rootDir,
		extensions: extensions,
	}
}

// WithMaxSize makes Scan skip files larger than n bytes. Zero means no limit.
func (s *Scanner) WithMaxSize(n int64) *Scanner {
	s.maxSize = n
	return s
}

// Scan walks the root directory and returns the matching files sorted by
// path. Hidden directories are not entered.
func (s *Scanner) Scan() ([]FileInfo, error) {
	var files []FileInfo
	s.skipped = s.skipped[:0]

	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != s.rootDir && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.isTargetFile(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if s.maxSize > 0 && info.Size() > s.maxSize {
			s.skipped = append(s.skipped, path)
			return nil
		}
		files = append(files, FileInfo{Path: path, Size: info.Size()})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// Skipped returns the files the last Scan left out for being too large.
func (s *Scanner) Skipped() []string {
	return s.skipped
}

func (s *Scanner) isTargetFile(path string) bool {
	if len(s.extensions) == 0 {
		return true
	}

	ext := filepath.Ext(path)
	for _, targetExt := range s.extensions {
		if ext == targetExt {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".")
}
