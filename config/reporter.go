package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.uber.org/multierr"

	"cssstat/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates empty debug report, temporary file is used when
// destination cannot be created.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	return &Report{entries: make(map[string]entry), file: f}, nil
}

// entry is either file on disk (path) or in-memory data.
type entry struct {
	path  string
	data  []byte
	stamp time.Time
}

func (e entry) origin() string {
	if e.data != nil {
		return fmt.Sprintf("<%d bytes>", len(e.data))
	}
	return e.path
}

// Report collects files and data produced during run and writes them into
// single zip archive on Close. Nil report ignores everything, so callers do
// not have to check if debugging was requested.
// NOTE: not to be used concurrently!
type Report struct {
	entries map[string]entry
	file    *os.File
}

func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return multierr.Append(r.finalize(), r.file.Close())
}

// Name returns absolute name of archive being written.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store schedules file at path to be put into archive as name. File is read
// on Close, so it could still be written to until then. Absent files are
// skipped.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	if p, err := filepath.Abs(path); err == nil {
		path = p
	}
	if old, exists := r.entries[name]; exists && old.path == path {
		return
	}
	r.add(name, entry{path: path})
}

// StoreData puts data into archive as name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	if data == nil {
		data = []byte{}
	}
	r.add(name, entry{data: data, stamp: time.Now()})
}

func (r *Report) add(name string, e entry) {
	if old, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("attempt to overwrite report entry [%s]: was %s, now %s", name, old.origin(), e.origin()))
	}
	r.entries[name] = e
}

func (r *Report) finalize() (err error) {
	arc := zip.NewWriter(r.file)
	defer func() {
		err = multierr.Append(err, arc.Close())
	}()

	names := slices.Sorted(maps.Keys(r.entries))
	if err := writeEntry(arc, "MANIFEST", time.Now(), r.manifest(names)); err != nil {
		return err
	}
	for _, name := range names {
		if err := r.archive(arc, name, r.entries[name]); err != nil {
			return fmt.Errorf("unable to archive %s: %w", name, err)
		}
	}
	return nil
}

func (r *Report) manifest(names []string) io.Reader {
	now := time.Now()
	buf := new(bytes.Buffer)
	for _, name := range names {
		e := r.entries[name]
		stamp := e.stamp
		if stamp.IsZero() {
			stamp = now
		}
		fmt.Fprintf(buf, "%s\t%s\t%s\n", stamp.UTC().Format(time.UnixDate), name, e.origin())
	}
	return buf
}

func (r *Report) archive(arc *zip.Writer, name string, e entry) error {
	if e.data != nil {
		return writeEntry(arc, name, e.stamp, bytes.NewReader(e.data))
	}

	info, err := os.Stat(e.path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	f, err := os.Open(e.path)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeEntry(arc, name, info.ModTime(), f)
}

func writeEntry(arc *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := arc.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
