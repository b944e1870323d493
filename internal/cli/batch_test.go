package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDataset(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const (
	radialYAML = "kind: radial\nradial:\n  data:\n    - {label: a, value: 1}\n    - {label: b, value: 2}\n"
	streamTOML = "kind = \"stream\"\n[[stream.rows]]\nx = \"mon\"\nweb = 3\n[[stream.rows]]\nx = \"tue\"\nweb = 5\n"
)

func TestRunBatch(t *testing.T) {
	c := newTestCLI(t)
	in, out := t.TempDir(), t.TempDir()
	inputs := []string{
		writeDataset(t, in, "pie.yaml", radialYAML),
		writeDataset(t, in, "flow.toml", streamTOML),
	}

	flags := chartFlags{formats: "svg"}
	if err := c.runBatch(context.Background(), inputs, &flags, out, 2, false); err != nil {
		t.Fatalf("runBatch() error: %v", err)
	}
	for _, name := range []string{"pie.svg", "flow.svg"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestRunBatchKeepGoing(t *testing.T) {
	c := newTestCLI(t)
	in, out := t.TempDir(), t.TempDir()
	inputs := []string{
		writeDataset(t, in, "good.yaml", radialYAML),
		writeDataset(t, in, "bad.yaml", "kind: donut\n"),
	}

	flags := chartFlags{formats: "svg"}
	err := c.runBatch(context.Background(), inputs, &flags, out, 1, true)
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("runBatch() error = %v, want 1 of 2 failed", err)
	}
	if _, err := os.Stat(filepath.Join(out, "good.svg")); err != nil {
		t.Errorf("good dataset should still render: %v", err)
	}
}

func TestBatchTable(t *testing.T) {
	out := batchTable([]batchResult{
		{input: "/tmp/a.yaml", kind: "radial", items: 3, cached: true},
		{input: "/tmp/b.yaml", err: os.ErrNotExist},
	})
	for _, want := range []string{"a.yaml", "radial", iconCached, "b.yaml", "file does not exist"} {
		if !strings.Contains(out, want) {
			t.Errorf("batchTable() missing %q:\n%s", want, out)
		}
	}
}
