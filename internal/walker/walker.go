// Package walker finds diagram sources under a directory tree.
package walker

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultMaxFileSize bounds the files Walk returns (1 MiB).
const DefaultMaxFileSize int64 = 1 << 20

// File is a diagram source found during traversal.
type File struct {
	Path    string // absolute
	RelPath string // relative to the root, slash separated
	Size    int64
	Kind    Kind
}

// Options controls Walk.
type Options struct {
	Root        string
	Include     []string // globs; empty includes every diagram source
	Exclude     []string
	MaxFileSize int64 // 0 means DefaultMaxFileSize
}

// Walk returns every PlantUML source and Markdown document under
// opts.Root that survives the root .gitignore and the include and exclude
// patterns. Unreadable entries, binary files and oversized files are
// skipped silently.
func Walk(opts Options) ([]File, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}
	include, err := Compile(opts.Include)
	if err != nil {
		return nil, fmt.Errorf("walker: include: %w", err)
	}
	exclude, err := Compile(opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walker: exclude: %w", err)
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	ignored := readGitignore(root)

	var files []File
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			if p != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		kind := DetectKind(d.Name())
		if kind == KindUnknown {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if ignored.Match(rel) || exclude.Match(rel) {
			return nil
		}
		if len(include) > 0 && !include.Match(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil || info.Size() > maxSize || isBinary(p) {
			return nil
		}
		files = append(files, File{Path: p, RelPath: rel, Size: info.Size(), Kind: kind})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}
	return files, nil
}

// isBinary looks for a NUL byte in the first 512 bytes. Unreadable files
// count as binary.
func isBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return true
	}
	return bytes.IndexByte(buf[:n], 0) >= 0
}
