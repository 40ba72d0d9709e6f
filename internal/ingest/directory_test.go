package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestListPDFs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b_universal.pdf"))
	touch(t, filepath.Join(dir, "a_asmodee.PDF"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, ".hidden.pdf"))
	touch(t, filepath.Join(dir, ".archive", "old.pdf"))
	touch(t, filepath.Join(dir, "august", "ilo.pdf"))

	paths, err := ListPDFs(dir)
	if err != nil {
		t.Fatalf("ListPDFs: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a_asmodee.PDF"),
		filepath.Join(dir, "august", "ilo.pdf"),
		filepath.Join(dir, "b_universal.pdf"),
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestListPDFsEmptyDir(t *testing.T) {
	t.Parallel()

	paths, err := ListPDFs(t.TempDir())
	if err != nil {
		t.Fatalf("ListPDFs: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("paths = %v, want none", paths)
	}
}
