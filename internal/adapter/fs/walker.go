// Package fs discovers ingestable documents on disk.
package fs

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// FileInfo describes one discovered document.
type FileInfo struct {
	// RelPath is slash-separated and relative to the walk root; it doubles
	// as the document ID.
	RelPath string
	AbsPath string
	Size    int64
	ModTime time.Time
}

// Walker lists files under a root matching include globs and not matching
// exclude globs. Patterns use doublestar syntax ("**/*.txt").
type Walker struct {
	includes []string
	excludes []string
}

func NewWalker(includes, excludes []string) *Walker {
	return &Walker{includes: includes, excludes: excludes}
}

// Walk returns matching files sorted in directory-walk order. Unreadable
// subtrees are skipped, not fatal.
func (w *Walker) Walk(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []FileInfo
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && w.excluded(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !w.included(rel) || w.excluded(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, FileInfo{
			RelPath: rel,
			AbsPath: path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (w *Walker) included(rel string) bool {
	if len(w.includes) == 0 {
		return true
	}
	for _, pattern := range w.includes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (w *Walker) excluded(rel string) bool {
	for _, pattern := range w.excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// ReadFile reads a discovered file as text.
func ReadFile(info FileInfo) (string, error) {
	data, err := os.ReadFile(info.AbsPath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
