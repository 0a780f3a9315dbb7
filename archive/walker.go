// Package archive builds Walk abstraction on top of "archive/zip".
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"strings"
)

// WalkFunc is called for each file visited by Walk with archive path as
// given to Walk. Returned error stops the walk.
type WalkFunc func(archive string, file *zip.File) error

// Walk calls walkFn for every file located directly in dir inside the
// archive, in the order files are stored. Subdirectories are not visited, an
// empty dir means archive root. Entries with path traversal components ("..")
// or absolute paths fail the walk to prevent Zip Slip attacks.
func Walk(archive, dir string, walkFn WalkFunc) error {

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	dir = strings.Trim(path.Clean("/"+dir), "/")

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		if !directlyIn(name, dir) {
			continue
		}
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

// directlyIn reports if entry name is located in dir itself and not in one
// of its subdirectories.
func directlyIn(name, dir string) bool {
	parent := path.Dir(name)
	if parent == "." {
		parent = ""
	}
	return parent == dir
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
