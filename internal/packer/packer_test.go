package packer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/luadist2/luadist2/internal/installedset"
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

func TestDepHashIsStableAndOrderIndependent(t *testing.T) {
	installed := installedset.New()
	installed.Append(pkgval.Package{Name: "lua", Version: mustVersion(t, "5.3.4")})
	installed.Append(pkgval.Package{Name: "zlib", Version: mustVersion(t, "1.2.8")})

	pkg := pkgval.Package{
		Name: "xml",
		BinDependencies: []pkgval.PackageRef{
			{Name: "lua"}, {Name: "zlib"},
		},
	}
	reordered := pkgval.Package{
		Name: "xml",
		BinDependencies: []pkgval.PackageRef{
			{Name: "zlib"}, {Name: "lua"},
		},
	}

	h1 := DepHash("unix", pkg, installed)
	h2 := DepHash("unix", reordered, installed)
	if h1 != h2 {
		t.Errorf("expected hash independent of declaration order, got %q vs %q", h1, h2)
	}

	h3 := DepHash("windows", pkg, installed)
	if h1 == h3 {
		t.Errorf("expected hash to vary with platform")
	}
}

func TestPackCopiesFilesAndEmitsExportedRockspec(t *testing.T) {
	deployDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(deployDir, "lib", "lua", "5.3"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(deployDir, "lib", "lua", "5.3", "xml.so"), []byte("bin"), 0644); err != nil {
		t.Fatal(err)
	}

	installed := installedset.New()
	installed.Append(pkgval.Package{Name: "lua", Version: mustVersion(t, "5.3.4")})
	installed.Append(pkgval.Package{
		Name:            "xml",
		Version:         mustVersion(t, "1.8.0-1"),
		Files:           []string{"lib/lua/5.3/xml.so"},
		BinDependencies: []pkgval.PackageRef{{Name: "lua"}},
		BuiltOnPlatform: "linux",
		Spec: &rockspec.Rockspec{
			Package: "xml",
			Version: "1.8.0-1",
		},
	})

	destination := t.TempDir()
	ref, _ := pkgval.ParseDependencyString("xml")

	if err := Pack([]pkgval.PackageRef{ref}, installed, deployDir, destination, "unix"); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	entries, err := os.ReadDir(destination)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one export dir, got %v", entries)
	}
	outDir := filepath.Join(destination, entries[0].Name())

	matches, err := filepath.Glob(filepath.Join(outDir, "xml-*.rockspec"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one exported rockspec, got %v (err=%v)", matches, err)
	}

	rs, err := rockspec.Load(matches[0])
	if err != nil {
		t.Fatalf("rockspec.Load: %v", err)
	}
	if len(rs.Files) != 1 || rs.Files[0] != "lib/lua/5.3/xml.so" {
		t.Errorf("unexpected exported files: %v", rs.Files)
	}
	if len(rs.Dependencies) != 1 || rs.Dependencies[0] != "lua ~> 5.3" {
		t.Errorf("expected pessimistic dependency constraint, got %v", rs.Dependencies)
	}
	if rs.Description.BuiltOn != "linux" {
		t.Errorf("expected built_on preserved, got %q", rs.Description.BuiltOn)
	}
	if _, err := os.Stat(filepath.Join(outDir, "lib", "lua", "5.3", "xml.so")); err != nil {
		t.Errorf("expected file copied into export dir: %v", err)
	}
}
