package sender

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/syncwire/rsync"
)

// buildFileList walks each of paths, producing the transmitted file list
// with names relative to root (spec.md §4.4's "name-prefix-sharing"
// codec operates on these relative names). root is stripped as a
// directory prefix the same way the teacher's clientmaincmd.go computes
// trimPrefix from the source argument before invoking the sender.
func buildFileList(root string, paths []string, excl *FilterList) ([]*rsync.File, error) {
	var files []*rsync.File
	seen := make(map[string]bool)

	for _, p := range paths {
		err := filepath.Walk(p, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			name := relativeName(root, p, path)
			if excluded(excl, name) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if seen[name] {
				return nil
			}
			seen[name] = true

			f, err := fileFromInfo(name, path, info)
			if err != nil {
				return err
			}
			files = append(files, f)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// relativeName reproduces rsync's trailing-slash convention: a source
// argument ending in "/" transfers the directory's contents (the
// directory itself becomes the "." entry), while one without a trailing
// slash transfers the directory itself as a named top-level entry.
func relativeName(root, walkedPath, path string) string {
	prefix := strings.TrimSuffix(root, "/")
	trailingSlash := strings.HasSuffix(root, "/")

	rel, err := filepath.Rel(walkedPath, path)
	if err != nil {
		rel = "."
	}

	if trailingSlash {
		if rel == "." {
			return "."
		}
		return rel
	}
	if rel == "." {
		return prefix
	}
	return prefix + "/" + rel
}

func excluded(excl *FilterList, name string) bool {
	if excl == nil {
		return false
	}
	for _, pattern := range excl.Filters {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func fileFromInfo(name, path string, info fs.FileInfo) (*rsync.File, error) {
	mode := int32(info.Mode().Perm())
	switch {
	case info.IsDir():
		mode |= 0o040000
	case info.Mode()&os.ModeSymlink != 0:
		mode |= 0o120000
	default:
		mode |= 0o100000
	}

	f := &rsync.File{
		Name:    name,
		Mode:    mode,
		Size:    info.Size(),
		ModTime: info.ModTime().Unix(),
		HaveUid: true,
		HaveGid: true,
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return nil, fmt.Errorf("reading symlink %s: %w", path, err)
		}
		f.LinkTarget = target
	}

	return f, nil
}
