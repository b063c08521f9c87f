package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkerDefaultIncludesJSON(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "clinics.json")
	writeFixture(t, root, "nested/treatments.json")
	writeFixture(t, root, "notes.txt")

	files, err := NewWalker(nil, nil).Walk(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %v", files)
	}
	for _, f := range files {
		if filepath.Ext(f) != ".json" {
			t.Errorf("non-json file picked up: %s", f)
		}
	}
}

func TestWalkerExcludes(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "clinics.json")
	writeFixture(t, root, "drafts/ignore.json")

	files, err := NewWalker(nil, []string{"drafts/*.json"}).Walk(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "clinics.json" {
		t.Errorf("unexpected files: %v", files)
	}
}

func TestWalkerCustomIncludes(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "clinics.json")
	writeFixture(t, root, "seed.yaml")

	files, err := NewWalker([]string{"**/*.yaml"}, nil).Walk(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "seed.yaml" {
		t.Errorf("unexpected files: %v", files)
	}
}
