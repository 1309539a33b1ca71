package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/luadist2/luadist2/internal/installedset"
	"github.com/luadist2/luadist2/internal/pkgval"
)

func TestRemovePackageDeletesUnsharedFilesOnly(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "lib"), 0755); err != nil {
		t.Fatal(err)
	}
	shared := filepath.Join("lib", "shared.so")
	owned := filepath.Join("lib", "xml.so")
	for _, rel := range []string{shared, owned} {
		if err := os.WriteFile(filepath.Join(root, rel), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	set := installedset.New()
	set.Append(pkgval.Package{Name: "base", Files: []string{shared}})
	set.Append(pkgval.Package{Name: "xml", Files: []string{shared, owned}})

	if err := RemovePackage(set, root, "xml"); err != nil {
		t.Fatalf("RemovePackage: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, owned)); !os.IsNotExist(err) {
		t.Errorf("expected unshared file removed, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, shared)); err != nil {
		t.Errorf("expected shared file retained: %v", err)
	}
	if _, ok := set.Get("xml"); ok {
		t.Errorf("expected xml removed from set")
	}
	if _, ok := set.Get("base"); !ok {
		t.Errorf("expected base to remain in set")
	}
}

func TestRemovePackageUnknownNameIsError(t *testing.T) {
	set := installedset.New()
	if err := RemovePackage(set, t.TempDir(), "nope"); err == nil {
		t.Fatalf("expected error for unknown package")
	}
}
