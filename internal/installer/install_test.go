package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/luadist2/luadist2/internal/config"
	"github.com/luadist2/luadist2/internal/pkgval"
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

func TestInstallBinaryShortCircuitCopiesFilesAndStripsHash(t *testing.T) {
	srcDir := t.TempDir()
	root := t.TempDir()

	if err := os.MkdirAll(filepath.Join(srcDir, "lib", "lua", "5.3"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "lib", "lua", "5.3", "xml.so"), []byte("binary"), 0644); err != nil {
		t.Fatal(err)
	}

	rsContent := `package = "xml"
version = "1.8.0-1_deadbeef"
files = { "lib/lua/5.3/xml.so" }
`
	rsPath := filepath.Join(srcDir, "xml-1.8.0-1_deadbeef.rockspec")
	if err := os.WriteFile(rsPath, []byte(rsContent), 0644); err != nil {
		t.Fatal(err)
	}

	pkg := pkgval.Package{Name: "xml", Version: mustVersion(t, "1.8.0-1_deadbeef")}
	opts := Options{Root: root, TempDir: t.TempDir(), Config: config.Default()}

	out, err := Install(pkg, srcDir, opts)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}

	if out.Version.String() != "1.8.0-1" {
		t.Errorf("expected dep-hash suffix stripped, got %q", out.Version.String())
	}
	if len(out.Files) != 1 || out.Files[0] != "lib/lua/5.3/xml.so" {
		t.Errorf("unexpected Files: %v", out.Files)
	}
	if _, err := os.Stat(filepath.Join(root, "lib", "lua", "5.3", "xml.so")); err != nil {
		t.Errorf("expected file copied into deploy root: %v", err)
	}
}

func TestInstallMissingRockspecIsAnError(t *testing.T) {
	pkg := pkgval.Package{Name: "xml", Version: mustVersion(t, "1.0-1")}
	opts := Options{Root: t.TempDir(), TempDir: t.TempDir(), Config: config.Default()}

	_, err := Install(pkg, t.TempDir(), opts)
	if err == nil {
		t.Fatalf("expected error for missing rockspec")
	}
}
