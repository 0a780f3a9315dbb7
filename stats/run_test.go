package stats

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"cssstat/config"
	"cssstat/state"
)

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

func runCommand(ctx context.Context, args ...string) error {
	cmd := &cli.Command{
		Name:   "cssstat",
		Flags:  Flags(),
		Action: Run,
	}
	return cmd.Run(ctx, append([]string{"cssstat"}, args...))
}

func writeStyles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestRun(t *testing.T) {
	dir := writeStyles(t, map[string]string{
		"10.css": ".color-1x {}",
		"2.css":  ".color-2-background { background: url(b.png) }",
		"3.css":  "a {",
	})
	out := filepath.Join(t.TempDir(), "stats.csv")

	ctx, _ := setupTestEnv(t)
	if err := runCommand(ctx, "--output", out, dir); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("unable to read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got:\n%s", data)
	}
	// lexical order
	for i, prefix := range []string{"eventId,", "10,", "2,", "3,"} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], prefix)
		}
	}
	if lines[2] != "2,46,0,1,0,1,0,," {
		t.Errorf("line 2 = %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "3,3,0,0,0,0,1,a {,") {
		t.Errorf("line 3 = %q", lines[3])
	}
}

func TestRun_NaturalOrderFromFlag(t *testing.T) {
	dir := writeStyles(t, map[string]string{
		"10.css": "",
		"2.css":  "",
	})
	out := filepath.Join(t.TempDir(), "stats.csv")

	ctx, _ := setupTestEnv(t)
	if err := runCommand(ctx, "--order", "natural", "--workers", "1", "-o", out, dir); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("unable to read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "2,") || !strings.HasPrefix(lines[2], "10,") {
		t.Errorf("unexpected output:\n%s", data)
	}
}

func TestRun_SourceFromConfiguration(t *testing.T) {
	dir := writeStyles(t, map[string]string{"1.css": "p {}"})
	out := filepath.Join(t.TempDir(), "stats.csv")

	ctx, env := setupTestEnv(t)
	env.Cfg.Input.Directory = dir
	if err := runCommand(ctx, "-o", out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("unable to read output: %v", err)
	}
	if !strings.Contains(string(data), "\n1,4,0,0,0,0,0,,\n") {
		t.Errorf("unexpected output:\n%s", data)
	}
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		args  []string
	}{
		{"file without event id", map[string]string{"1.css": "", "style.css": ""}, nil},
		{"bad order", map[string]string{"1.css": ""}, []string{"--order", "random"}},
		{"negative workers", map[string]string{"1.css": ""}, []string{"--workers=-1"}},
		{"unknown charset", map[string]string{"1.css": ""}, []string{"--charset", "no-such-charset"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeStyles(t, tt.files)
			out := filepath.Join(t.TempDir(), "stats.csv")

			ctx, _ := setupTestEnv(t)
			args := append(append([]string{"-o", out}, tt.args...), dir)
			if err := runCommand(ctx, args...); err == nil {
				t.Fatal("Run() expected error")
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Error("no report must be written on failure")
			}
		})
	}
}

func TestRun_MissingSource(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	if err := runCommand(ctx, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Run() expected error for missing source")
	}
}

func TestRun_DebugReport(t *testing.T) {
	dir := writeStyles(t, map[string]string{
		"1.css": "a { color: red }",
		"2.css": "b {",
	})
	dest := filepath.Join(t.TempDir(), "report.zip")

	ctx, env := setupTestEnv(t)
	rpt, err := (&config.ReporterConfig{Destination: dest}).Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	env.Rpt = rpt

	if err := runCommand(ctx, "--output", filepath.Join(t.TempDir(), "out.csv"), dir); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	zr, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"stats.csv", "parsed/1.css.txt", "failed/2.css"} {
		if !names[want] {
			t.Errorf("report misses %s, has %v", want, names)
		}
	}
	if names["parsed/2.css.txt"] {
		t.Error("unparsable stylesheet must not be dumped")
	}
}
