package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/tabscope/internal/utils"
)

func TestSafeWriteFileReplacesContent(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.md")
	if err := utils.SafeWriteFile(p, []byte("one")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := utils.SafeWriteFile(p, []byte("two")); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "two" {
		t.Fatalf("unexpected content: %q", b)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestExpandInputsGlobsAndDedupes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.csv", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n1\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	got := utils.ExpandInputs([]string{filepath.Join(dir, "*.csv"), filepath.Join(dir, "a.csv"), filepath.Join(dir, "missing.csv")})
	if len(got) != 2 {
		t.Fatalf("expected 2 files, got %v", got)
	}
	if filepath.Base(got[0]) != "a.csv" || filepath.Base(got[1]) != "b.csv" {
		t.Fatalf("expected sorted output, got %v", got)
	}
}

func TestSummaryName(t *testing.T) {
	if got := utils.SummaryName("/data/MOCK_DATA.csv"); got != "MOCK_DATA.summary.md" {
		t.Fatalf("got %q", got)
	}
}
