package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readZip(t *testing.T, path string) map[string]string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open report: %v", err)
	}
	defer zr.Close()

	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read %s: %v", f.Name, err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func TestReport_Finalize(t *testing.T) {
	tmpDir := t.TempDir()

	conf := ReporterConfig{Destination: filepath.Join(tmpDir, "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}

	stored := filepath.Join(tmpDir, "some.log")
	if err := os.WriteFile(stored, []byte("log line"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	r.Store("final.log", stored)
	r.Store("absent.log", filepath.Join(tmpDir, "does-not-exist.log"))
	r.StoreData("stats.csv", []byte("eventId,length\n1,2\n"))

	if r.Name() != conf.Destination {
		t.Errorf("Name() = %q, want %q", r.Name(), conf.Destination)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error: %v", err)
	}

	files := readZip(t, conf.Destination)

	if got := files["final.log"]; got != "log line" {
		t.Errorf("final.log = %q, want %q", got, "log line")
	}
	if got := files["stats.csv"]; got != "eventId,length\n1,2\n" {
		t.Errorf("stats.csv = %q", got)
	}
	if _, ok := files["absent.log"]; ok {
		t.Error("absent file must not be archived")
	}
	manifest, ok := files["MANIFEST"]
	if !ok {
		t.Fatal("MANIFEST is missing")
	}
	for _, name := range []string{"final.log", "stats.csv", "absent.log"} {
		if !strings.Contains(manifest, name) {
			t.Errorf("MANIFEST does not mention %s", name)
		}
	}
}

func TestReport_NilIsNoop(t *testing.T) {
	var r *Report

	r.Store("a", "b")
	r.StoreData("c", []byte("d"))
	if r.Name() != "" {
		t.Errorf("Name() of nil report = %q, want empty", r.Name())
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() of nil report error: %v", err)
	}
}

func TestReport_StoreDataTwicePanics(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.StoreData("x", []byte("1"))

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate data entry")
		}
	}()
	r.StoreData("x", []byte("2"))
}

func TestReport_StoreSamePathTwice(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.Store("final.log", "a.log")
	r.Store("final.log", "a.log")

	defer func() {
		if recover() == nil {
			t.Error("expected panic when entry is redirected to another file")
		}
	}()
	r.Store("final.log", "b.log")
}

func TestReport_EmptyData(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "report.zip")
	r, err := (&ReporterConfig{Destination: dest}).Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	r.StoreData("empty.csv", nil)
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	files := readZip(t, dest)
	got, ok := files["empty.csv"]
	if !ok || got != "" {
		t.Errorf("empty.csv = %q, present %v", got, ok)
	}
}
