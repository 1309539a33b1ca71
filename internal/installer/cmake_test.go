package installer

import (
	"strings"
	"testing"

	"github.com/luadist2/luadist2/internal/rockspec"
)

func TestGenerateCMakeListsEmitsOneTargetPerModule(t *testing.T) {
	rs := &rockspec.Rockspec{
		Package: "xml",
		Build: rockspec.Build{
			Type: rockspec.BuildBuiltin,
			Modules: map[string]string{
				"xml":     "src/xml.c",
				"xml.sax": "src/sax.c",
			},
			Install: map[string]string{
				"lua": "src/init.lua",
			},
		},
	}

	out, err := GenerateCMakeLists(rs, LibraryModule)
	if err != nil {
		t.Fatalf("GenerateCMakeLists: %v", err)
	}
	if !strings.Contains(out, "add_library(xml MODULE src/xml.c)") {
		t.Errorf("missing xml target:\n%s", out)
	}
	if !strings.Contains(out, "add_library(xml_sax MODULE src/sax.c)") {
		t.Errorf("expected dotted module name translated to xml_sax:\n%s", out)
	}
	if !strings.Contains(out, "install(FILES src/init.lua DESTINATION lua)") {
		t.Errorf("missing install rule:\n%s", out)
	}
}

func TestGenerateCMakeListsRequiresPackageName(t *testing.T) {
	_, err := GenerateCMakeLists(&rockspec.Rockspec{}, LibraryModule)
	if err == nil {
		t.Fatalf("expected error for unnamed rockspec")
	}
}

func TestWriteCacheScriptNormalizesPathsAndSortsKeys(t *testing.T) {
	vars := map[string]string{
		"CMAKE_INSTALL_PREFIX": `C:\root`,
		"CMAKE_LIBRARY_PATH":   "/root/lib",
	}
	out := writeCacheScript(vars)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "SET(CMAKE_INSTALL_PREFIX") {
		t.Errorf("expected sorted keys, got %q first", lines[0])
	}
	if !strings.Contains(out, `"C:/root"`) {
		t.Errorf("expected normalized path separators:\n%s", out)
	}
}

func TestBuildVariablesPrecedence(t *testing.T) {
	defaults := map[string]string{"A": "default", "B": "default"}
	overrides := map[string]string{"A": "override"}
	rockspecVars := map[string]string{"A": "rockspec", "C": "rockspec"}

	vars := buildVariables("/root", defaults, overrides, rockspecVars)

	if vars["A"] != "override" {
		t.Errorf("A = %q, want override to win over rockspec", vars["A"])
	}
	if vars["B"] != "default" {
		t.Errorf("B = %q, want default preserved", vars["B"])
	}
	if vars["C"] != "rockspec" {
		t.Errorf("C = %q, want rockspec value to fill in an unset key", vars["C"])
	}
	if vars["CMAKE_INSTALL_PREFIX"] != "/root" {
		t.Errorf("CMAKE_INSTALL_PREFIX = %q", vars["CMAKE_INSTALL_PREFIX"])
	}
}
