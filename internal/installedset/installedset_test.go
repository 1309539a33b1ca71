package installedset

import (
	"path/filepath"
	"testing"

	"github.com/luadist2/luadist2/internal/pkgval"
	"github.com/luadist2/luadist2/internal/rockspec"
	"github.com/luadist2/luadist2/internal/version"
)

func mustVersion(t *testing.T, s string) version.Version {
	t.Helper()
	v, err := version.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestSaveLoadRoundTripPreservesOrder(t *testing.T) {
	s := New()
	s.Append(pkgval.Package{Name: "lua", Version: mustVersion(t, "5.3.4"), Files: []string{"bin/lua"}})
	s.Append(pkgval.Package{Name: "xml", Version: mustVersion(t, "1.8.0-1"), Files: []string{"lib/lua/5.3/xml.so"},
		BinDependencies: []pkgval.PackageRef{{Name: "lua"}}})

	path := filepath.Join(t.TempDir(), "manifest")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := loaded.Ordered()
	if len(got) != 2 || got[0].Name != "lua" || got[1].Name != "xml" {
		t.Fatalf("order not preserved: %v", got)
	}
	if got[1].Files[0] != "lib/lua/5.3/xml.so" {
		t.Errorf("files not preserved: %v", got[1].Files)
	}
	if len(got[1].BinDependencies) != 1 || got[1].BinDependencies[0].Name != "lua" {
		t.Errorf("bin_dependencies not preserved: %v", got[1].BinDependencies)
	}
}

func TestSaveLoadRoundTripPreservesAttachedSpec(t *testing.T) {
	s := New()
	spec := &rockspec.Rockspec{
		Package:      "xml",
		Version:      "1.8.0-1",
		Dependencies: []string{"lua >= 5.1"},
		Description:  rockspec.Description{Summary: "XML parser"},
	}
	pkg := pkgval.Package{Name: "xml", Version: mustVersion(t, "1.8.0-1"), Files: []string{"lib/lua/5.3/xml.so"}, Spec: spec}
	s.Append(pkg)

	path := filepath.Join(t.TempDir(), "manifest")
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got, ok := loaded.Get("xml")
	if !ok {
		t.Fatalf("expected xml to be present after reload")
	}
	if got.Spec == nil {
		t.Fatalf("expected attached rockspec to survive a save/load round trip")
	}
	if got.Spec.Package != "xml" || got.Spec.Version != "1.8.0-1" {
		t.Errorf("unexpected reloaded spec: %+v", got.Spec)
	}
	if len(got.Spec.Dependencies) != 1 || got.Spec.Dependencies[0] != "lua >= 5.1" {
		t.Errorf("expected dependencies to survive round trip, got %v", got.Spec.Dependencies)
	}
	if got.Spec.Description.Summary != "XML parser" {
		t.Errorf("expected description to survive round trip, got %q", got.Spec.Description.Summary)
	}
}

func TestLoadMissingFileYieldsEmptySet(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "manifest"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Ordered()) != 0 {
		t.Errorf("expected empty set, got %v", s.Ordered())
	}
}

func TestFileOwnersExcludesSelf(t *testing.T) {
	s := New()
	s.Append(pkgval.Package{Name: "a", Files: []string{"lib/shared.so"}})
	s.Append(pkgval.Package{Name: "b", Files: []string{"lib/shared.so"}})

	owners := s.FileOwners("lib/shared.so", "a")
	if len(owners) != 1 || owners[0] != "b" {
		t.Errorf("expected [b], got %v", owners)
	}
}
