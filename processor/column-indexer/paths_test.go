package columnindexer

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestResolveRoots_NonGlob(t *testing.T) {
	tmpDir := t.TempDir()

	roots, err := ResolveRoots([]string{tmpDir})
	if err != nil {
		t.Fatalf("ResolveRoots failed: %v", err)
	}
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}

	abs, _ := filepath.Abs(tmpDir)
	if roots[0] != abs {
		t.Errorf("expected %q, got %q", abs, roots[0])
	}
}

func TestResolveRoots_NotDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "campothr.dat")
	if err := os.WriteFile(filePath, []byte("CAMPUS\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ResolveRoots([]string{filePath}); err == nil {
		t.Error("expected error for non-directory root")
	}
}

func TestResolveRoots_Missing(t *testing.T) {
	if _, err := ResolveRoots([]string{filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestResolveRoots_Glob(t *testing.T) {
	// tmpDir/
	//   mirror-a/aeis/
	//   mirror-b/aeis/
	//   notes.txt
	tmpDir := t.TempDir()
	for _, dir := range []string{"mirror-a/aeis", "mirror-b/aeis"} {
		if err := os.MkdirAll(filepath.Join(tmpDir, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	roots, err := ResolveRoots([]string{filepath.Join(tmpDir, "*", "aeis")})
	if err != nil {
		t.Fatalf("ResolveRoots failed: %v", err)
	}
	sort.Strings(roots)

	want := []string{
		filepath.Join(tmpDir, "mirror-a", "aeis"),
		filepath.Join(tmpDir, "mirror-b", "aeis"),
	}
	if len(roots) != len(want) {
		t.Fatalf("expected %d roots, got %d: %v", len(want), len(roots), roots)
	}
	for i := range want {
		if roots[i] != want[i] {
			t.Errorf("roots[%d] = %q, want %q", i, roots[i], want[i])
		}
	}

	// Files matched by a glob are not roots.
	if _, err := ResolveRoots([]string{filepath.Join(tmpDir, "*.txt")}); err == nil {
		t.Error("expected error when a glob matches no directories")
	}
}

func TestResolveRoots_Deduplicates(t *testing.T) {
	tmpDir := t.TempDir()
	roots, err := ResolveRoots([]string{tmpDir, tmpDir + string(filepath.Separator)})
	if err != nil {
		t.Fatalf("ResolveRoots failed: %v", err)
	}
	if len(roots) != 1 {
		t.Errorf("expected duplicates removed, got %v", roots)
	}
}

func TestMakeAbsolutePattern(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		pattern string
		want    string
	}{
		{"/data/*/aeis", "/data/*/aeis"},
		{"*", filepath.Join(wd, "*")},
		{"mirrors/*", filepath.Join(wd, "mirrors") + "/*"},
		{"/*", "/*"},
	}
	for _, tt := range tests {
		got, err := makeAbsolutePattern(tt.pattern)
		if err != nil {
			t.Fatalf("makeAbsolutePattern(%q): %v", tt.pattern, err)
		}
		if got != tt.want {
			t.Errorf("makeAbsolutePattern(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}
