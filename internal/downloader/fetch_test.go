package downloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/luadist2/luadist2/internal/manifest"
	"github.com/luadist2/luadist2/internal/pkgval"
	"github.com/luadist2/luadist2/internal/version"
)

func mustVersion(t *testing.T, s string) version.Version {
	t.Helper()
	v, err := version.Parse(s)
	if err != nil {
		t.Fatalf("version.Parse(%q): %v", s, err)
	}
	return v
}

func TestFetchLocalURLShortCircuit(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "xml-1.0-1.rockspec"), []byte(`package = "xml"
version = "1.0-1"
`), 0644); err != nil {
		t.Fatal(err)
	}

	m := &manifest.Manifest{Packages: map[string]map[string]manifest.PackageInfo{
		"xml": {"1.0.0-1": manifest.PackageInfo{LocalURL: src}},
	}}

	pkg := pkgval.Package{Name: "xml", Version: mustVersion(t, "1.0-1")}
	dest := t.TempDir()

	out, err := Fetch([]pkgval.Package{pkg}, dest, nil, m)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	dir, ok := out[Key{Name: "xml", Version: "1.0-1"}]
	if !ok {
		t.Fatalf("missing fetch result for xml, got %v", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "xml-1.0-1.rockspec")); err != nil {
		t.Errorf("expected rockspec copied into staging dir: %v", err)
	}
}

func TestFetchReusesValidStagingDir(t *testing.T) {
	m := &manifest.Manifest{Packages: map[string]map[string]manifest.PackageInfo{}}
	pkg := pkgval.Package{Name: "xml", Version: mustVersion(t, "1.0-1")}
	dest := t.TempDir()

	existing := stagingDirFor(dest, pkg)
	if err := os.MkdirAll(existing, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(existing, "xml-1.0-1.rockspec"), []byte("package = \"xml\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := Fetch([]pkgval.Package{pkg}, dest, nil, m)
	if err != nil {
		t.Fatalf("Fetch should reuse the existing staging dir without any repo_path: %v", err)
	}
	if out[Key{Name: "xml", Version: "1.0-1"}] != existing {
		t.Errorf("expected reused dir %s, got %s", existing, out[Key{Name: "xml", Version: "1.0-1"}])
	}
}

func TestFetchFailsWhenNoSourceAvailable(t *testing.T) {
	m := &manifest.Manifest{Packages: map[string]map[string]manifest.PackageInfo{}}
	pkg := pkgval.Package{Name: "xml", Version: mustVersion(t, "1.0-1")}

	_, err := Fetch([]pkgval.Package{pkg}, t.TempDir(), nil, m)
	if err == nil {
		t.Fatalf("expected fetch failure with no local_url and no repo_path")
	}
}
