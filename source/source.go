// Package source enumerates input stylesheets.
package source

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"cssstat/archive"
	"cssstat/config"
)

// File is a single input file.
type File struct {
	Name string // base name, used to derive event id
	Path string // for diagnostics

	read func() ([]byte, error)
}

// Read returns raw file content.
func (f File) Read() ([]byte, error) {
	if f.read == nil {
		return nil, fmt.Errorf("file %q cannot be read", f.Path)
	}
	return f.read()
}

// NewFile creates File with content provided by read.
func NewFile(name, path string, read func() ([]byte, error)) File {
	return File{Name: name, Path: path, read: read}
}

// List returns files located directly in src. Src is either a directory or a
// zip archive optionally followed by a path inside it
// ("bundle.zip/styles"). No recursion and no filtering by name is performed.
func List(src string, order config.ListingOrder) ([]File, error) {
	var files []File

	fi, err := os.Stat(src)
	switch {
	case err == nil && fi.IsDir():
		files, err = listDir(src)
	case err == nil && fi.Mode().IsRegular():
		files, err = listArchive(src, "")
	default:
		files, err = listArchivePath(src)
	}
	if err != nil {
		return nil, err
	}

	sortFiles(files, order)
	return files, nil
}

func listDir(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to list directory: %w", err)
	}

	files := make([]File, 0, len(entries))
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if !e.Type().IsRegular() {
			if e.Type()&fs.ModeSymlink == 0 {
				continue
			}
			// links to regular files are listed, dangling ones and links to directories are not
			if fi, err := os.Stat(path); err != nil || !fi.Mode().IsRegular() {
				continue
			}
		}
		files = append(files, NewFile(e.Name(), path, func() ([]byte, error) {
			return os.ReadFile(path)
		}))
	}
	return files, nil
}

// listArchivePath looks for an existing archive file among leading elements
// of src, the rest is treated as a path inside that archive.
func listArchivePath(src string) ([]File, error) {
	var head, tail string
	for head = filepath.Clean(src); len(head) != 0; {
		fi, err := os.Stat(head)
		if err == nil {
			if !fi.Mode().IsRegular() {
				break
			}
			return listArchive(head, filepath.ToSlash(tail))
		}
		dir, base := filepath.Split(head)
		tail = filepath.Join(base, tail)
		dir = strings.TrimSuffix(dir, string(filepath.Separator))
		if dir == head {
			break
		}
		head = dir
	}
	return nil, fmt.Errorf("input source was not found (%s)", src)
}

func listArchive(arc, dir string) ([]File, error) {
	var files []File
	err := archive.Walk(arc, dir, func(arc string, f *zip.File) error {
		data, err := readZipFile(f)
		if err != nil {
			return fmt.Errorf("unable to read %q from archive: %w", f.Name, err)
		}
		files = append(files, NewFile(filepath.Base(f.Name), arc+"/"+f.Name, func() ([]byte, error) {
			return data, nil
		}))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to list archive %q: %w", arc, err)
	}
	return files, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func sortFiles(files []File, order config.ListingOrder) {
	switch order {
	case config.ListingOrderNatural:
		sort.SliceStable(files, func(i, j int) bool {
			return natural.Less(files[i].Name, files[j].Name)
		})
	default:
		sort.SliceStable(files, func(i, j int) bool {
			return files[i].Name < files[j].Name
		})
	}
}
