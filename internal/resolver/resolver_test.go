package resolver

import (
	"os"
	"testing"

	"github.com/luadist2/luadist2/internal/manifest"
	"github.com/luadist2/luadist2/internal/pkgval"
	"github.com/luadist2/luadist2/internal/version"
)

func newManifestFixture(t *testing.T, pkgs map[string]map[string][]string) *manifest.Manifest {
	t.Helper()
	root := t.TempDir()
	for name, versions := range pkgs {
		for ver, deps := range versions {
			dir := root + "/" + name
			writeRockspecFixture(t, dir, name+"-"+ver+".rockspec", name, ver, deps)
		}
	}
	s := &manifest.Store{TempRoot: t.TempDir(), ManifestFilename: "manifest", IncludeLocalRepos: true}
	m, err := s.GetManifest([]string{root})
	if err != nil {
		t.Fatalf("GetManifest: %v", err)
	}
	return m
}

func writeRockspecFixture(t *testing.T, dir, filename, name, ver string, deps []string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := "package = \"" + name + "\"\nversion = \"" + ver + "\"\ndependencies = {\n"
	for _, d := range deps {
		content += "   \"" + d + "\",\n"
	}
	content += "}\n"
	if err := os.WriteFile(dir+"/"+filename, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveSimpleDependency(t *testing.T) {
	// Scenario 1 (spec.md §8): xml 1.8.0-1 depends on lua >= 5.1; lua
	// 5.3.4 available. Expected order: [lua 5.3.4, xml 1.8.0-1].
	m := newManifestFixture(t, map[string]map[string][]string{
		"xml": {"1.8.0-1": {"lua >= 5.1"}},
		"lua": {"5.3.4": nil},
	})

	target, err := pkgval.ParseDependencyString("xml 1.8.0-1")
	if err != nil {
		t.Fatal(err)
	}

	out, err := Resolve([]pkgval.PackageRef{target}, pkgval.NewOrderedSet(), nil, m)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(out) != 2 || out[0].Name != "lua" || out[1].Name != "xml" {
		t.Fatalf("unexpected resolve order: %v", out)
	}
}

func TestResolveConflictNoFallbackWhenLuaInstalled(t *testing.T) {
	// Scenario 2: lua 5.1.5 installed, x depends on lua >= 5.3: expect
	// failure, no fallback attempted.
	m := newManifestFixture(t, map[string]map[string][]string{
		"x":   {"1.0-1": {"lua >= 5.3"}},
		"lua": {"5.1.5": nil},
	})

	installed := pkgval.NewOrderedSet()
	installed.Put(pkgval.Package{Name: "lua", Version: mustParseVersion(t, "5.1.5")})

	target, _ := pkgval.ParseDependencyString("x")
	_, err := ResolveWithFallback([]pkgval.PackageRef{target}, installed, nil, m)
	if err == nil {
		t.Fatalf("expected resolve failure, got success")
	}
}

func TestResolveFallbackTriesOlderLua(t *testing.T) {
	// Scenario 3 (spec.md §8): a plain greedy walk pins "lua" to the
	// newest available version the moment it's encountered with no
	// constraint; a later dependency needing an exact older lua then
	// conflicts. The fallback strategy retries with each lua version
	// pre-seeded, newest first: 5.3.4 fails the same way, 5.2.4 succeeds
	// because pre-seeding avoids ever selecting the newer version.
	m := newManifestFixture(t, map[string]map[string][]string{
		"y":   {"1.0-1": {"lua", "p >= 1.0"}},
		"p":   {"1.0-1": {"lua == 5.2.4"}},
		"lua": {"5.3.4": nil, "5.2.4": nil, "5.1.5": nil},
	})

	target, _ := pkgval.ParseDependencyString("y")

	if _, err := Resolve([]pkgval.PackageRef{target}, pkgval.NewOrderedSet(), nil, m); err == nil {
		t.Fatalf("expected plain Resolve to fail by pinning lua to 5.3.4 first")
	}

	out, err := ResolveWithFallback([]pkgval.PackageRef{target}, pkgval.NewOrderedSet(), nil, m)
	if err != nil {
		t.Fatalf("ResolveWithFallback: %v", err)
	}
	if len(out) == 0 || out[0].Name != "lua" || out[0].Version.String() != "5.2.4" {
		t.Fatalf("expected fallback to select lua 5.2.4 first, got %v", out)
	}
	if out[0].IsProvisional {
		t.Fatalf("fallback lua package must be materialized as non-provisional")
	}
}

func TestResolverOutputOrderRespectsDependencies(t *testing.T) {
	// Resolver output order property (spec.md §8): for P depending
	// (transitively) on Q, Q precedes P.
	m := newManifestFixture(t, map[string]map[string][]string{
		"a": {"1.0-1": {"b >= 1.0"}},
		"b": {"1.0-1": {"c >= 1.0"}},
		"c": {"1.0-1": nil},
	})
	target, _ := pkgval.ParseDependencyString("a")
	out, err := Resolve([]pkgval.PackageRef{target}, pkgval.NewOrderedSet(), nil, m)
	if err != nil {
		t.Fatal(err)
	}
	pos := map[string]int{}
	for i, p := range out {
		pos[p.Name] = i
	}
	if pos["c"] > pos["b"] || pos["b"] > pos["a"] {
		t.Fatalf("expected order c, b, a; got %v", out)
	}
}

func mustParseVersion(t *testing.T, s string) version.Version {
	t.Helper()
	v, err := version.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}
