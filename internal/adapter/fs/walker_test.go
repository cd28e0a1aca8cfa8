package fs

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWalker_IncludesAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", []byte("# readme"))
	writeFile(t, root, "docs/guide.md", []byte("guide"))
	writeFile(t, root, "docs/image.png", []byte("png"))
	writeFile(t, root, "vendor/lib/notes.md", []byte("vendored"))
	writeFile(t, root, ".lexis/config.yaml", []byte("index: {}"))

	w := NewWalker([]string{"**/*.md"}, []string{"**/vendor/**", "**/.lexis/**"})
	files, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, f := range files {
		rel, _ := filepath.Rel(root, f.Path)
		got = append(got, filepath.ToSlash(rel))
	}
	sort.Strings(got)

	want := []string{"README.md", "docs/guide.md"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestReadFile_SkipsBinary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "text.txt", []byte("plain text"))
	writeFile(t, root, "blob.bin", []byte{0xff, 0x00, 0xfe, 0x00})

	content, ok, err := ReadFile(filepath.Join(root, "text.txt"))
	if err != nil || !ok || content != "plain text" {
		t.Errorf("text file: content=%q ok=%v err=%v", content, ok, err)
	}

	_, ok, err = ReadFile(filepath.Join(root, "blob.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected binary file to be skipped")
	}
}
