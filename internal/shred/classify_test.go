package shred

import (
	"os"
	"path/filepath"
	"testing"
)

// TestExists verifies the existence check follows access semantics
func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !Exists(file) {
		t.Error("Exists(file) = false")
	}
	if !Exists(dir) {
		t.Error("Exists(dir) = false")
	}
	if Exists(filepath.Join(dir, "absent")) {
		t.Error("Exists(missing) = true")
	}
}

// TestClassify verifies type resolution including symlinks
func TestClassify(t *testing.T) {
	dir := t.TempDir()

	file := filepath.Join(dir, "regular")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	link := filepath.Join(dir, "link")
	if err := os.Symlink(file, link); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want FileType
	}{
		{"regular file", file, TypeFile},
		{"directory", dir, TypeDir},
		{"symlink not followed", link, TypeSymlink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.path)
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify(%s) = %v, expected %v", tt.path, got, tt.want)
			}
		})
	}
}

// TestClassifyMissing verifies a stat failure is propagated
func TestClassifyMissing(t *testing.T) {
	_, err := Classify(filepath.Join(t.TempDir(), "gone"))
	if err == nil {
		t.Error("Classify(missing) returned nil error")
	}
}
