package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kentaro-sato/wakachi/pkg/index"
	"github.com/kentaro-sato/wakachi/pkg/normalize"
)

func writeCorpus(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"a.txt":     "apple apple banana",
		"b.text":    "banana cherry",
		"c.TXT":     "cherry date",
		"readme.md": "not indexed",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBuildSequentialFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	writeCorpus(t, dir)

	idx := index.New()
	if err := BuildSequential(context.Background(), dir, idx, nil); err != nil {
		t.Fatal(err)
	}

	if !idx.Contains(normalize.Stem("apple")) {
		t.Fatal("expected indexed corpus to contain 'apple'")
	}
	for _, loc := range idx.Locations(normalize.Stem("indexed")) {
		if filepath.Ext(loc) == ".md" {
			t.Fatalf("a .md file should never be indexed, got location %s", loc)
		}
	}
}

func TestBuildSequentialMatchesParallel(t *testing.T) {
	dir := t.TempDir()
	writeCorpus(t, dir)

	seq := index.New()
	if err := BuildSequential(context.Background(), dir, seq, nil); err != nil {
		t.Fatal(err)
	}

	par := index.NewLocked()
	if err := BuildParallel(context.Background(), dir, par, 4, nil); err != nil {
		t.Fatal(err)
	}

	if got, want := seq.Words(), par.Words(); !equalStrings(got, want) {
		t.Fatalf("parallel and sequential builds produced different word sets: %v vs %v", got, want)
	}
	if got, want := seq.Counts(), par.Counts(); len(got) != len(want) {
		t.Fatalf("parallel and sequential builds produced different counts: %v vs %v", got, want)
	}
}

func TestBuildSequentialStopsOnCancellation(t *testing.T) {
	dir := t.TempDir()
	writeCorpus(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	idx := index.New()
	err := BuildSequential(ctx, dir, idx, nil)
	if err == nil {
		t.Fatal("expected BuildSequential to report cancellation")
	}
}

func TestBuildParallelStopsSubmittingOnCancellation(t *testing.T) {
	dir := t.TempDir()
	writeCorpus(t, dir)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	time.Sleep(2 * time.Millisecond)

	par := index.NewLocked()
	err := BuildParallel(ctx, dir, par, 2, nil)
	if err == nil {
		t.Fatal("expected BuildParallel to report cancellation")
	}
}

func TestAddFileSkipsUnreadableFile(t *testing.T) {
	idx := index.New()
	err := AddFile(filepath.Join(t.TempDir(), "missing.txt"), idx)
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
