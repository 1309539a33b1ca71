// Package static implements the static bundler (spec.md §4.9): given an
// ordered set of resolved packages and their source directories, it
// emits a top-level CMakeLists.txt that builds every package's modules
// as static libraries and links them into one aggregate executable,
// plus a generated C shim that preloads each module by name. No install
// step runs; the output is a build tree, never deployed.
package static

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luadist2/luadist2/internal/installer"
	"github.com/luadist2/luadist2/internal/pkgval"
	"github.com/luadist2/luadist2/internal/rockspec"
)

// PackageSource pairs a resolved Package with its loaded rockspec and
// the directory its build.modules source paths are relative to.
type PackageSource struct {
	Package pkgval.Package
	Spec    *rockspec.Rockspec
	Dir     string
}

// GenerateTopLevelCMakeLists emits the aggregate build description
// (spec.md §4.9): one add_subdirectory per package, in resolver order,
// and one executable target linking every module library produced.
func GenerateTopLevelCMakeLists(sources []PackageSource, executableName string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "cmake_minimum_required(VERSION 3.5)\n")
	fmt.Fprintf(&b, "project(%s C)\n\n", executableName)

	var allTargets []string
	for _, src := range sources {
		fmt.Fprintf(&b, "add_subdirectory(%s)\n", src.Package.Name)
		for _, name := range sortedModuleNames(src.Spec) {
			allTargets = append(allTargets, installer.ModuleSymbolName(name))
		}
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "add_executable(%s preload_shim.c main.c)\n", executableName)
	if len(allTargets) > 0 {
		fmt.Fprintf(&b, "target_link_libraries(%s %s)\n", executableName, strings.Join(allTargets, " "))
	}

	return b.String(), nil
}

// GenerateSubdirCMakeLists returns the CMakeLists.txt for one package's
// subdirectory: its modules built as STATIC libraries, reusing
// internal/installer's translation logic (SPEC_FULL.md §4.9).
func GenerateSubdirCMakeLists(spec *rockspec.Rockspec) (string, error) {
	if spec.Build.Type == rockspec.BuildCMake {
		return "", fmt.Errorf("static: package %s provides its own CMakeLists.txt; static bundling requires a builtin-style build recipe", spec.Package)
	}
	return installer.GenerateCMakeLists(spec, installer.LibraryStatic)
}

// GeneratePreloadShim emits the C shim that registers every module
// across sources into the host Lua interpreter's package.preload table,
// using luaopen_<symbol> as the entry point name (module names
// generated by replacing "." with "_", spec.md §4.9).
func GeneratePreloadShim(sources []PackageSource) string {
	var decls, entries strings.Builder

	for _, src := range sources {
		for _, name := range sortedModuleNames(src.Spec) {
			symbol := installer.ModuleSymbolName(name)
			fmt.Fprintf(&decls, "int luaopen_%s(lua_State *L);\n", symbol)
			fmt.Fprintf(&entries, "  { \"%s\", luaopen_%s },\n", name, symbol)
		}
	}

	var b strings.Builder
	b.WriteString("#include \"lua.h\"\n#include \"lauxlib.h\"\n\n")
	b.WriteString(decls.String())
	b.WriteString("\nstatic const luaL_Reg preloaded_modules[] = {\n")
	b.WriteString(entries.String())
	b.WriteString("  { NULL, NULL }\n};\n\n")
	b.WriteString("void register_preloaded_modules(lua_State *L) {\n")
	b.WriteString("  lua_getglobal(L, \"package\");\n")
	b.WriteString("  lua_getfield(L, -1, \"preload\");\n")
	b.WriteString("  for (const luaL_Reg *lib = preloaded_modules; lib->name; lib++) {\n")
	b.WriteString("    lua_pushcfunction(L, lib->func);\n")
	b.WriteString("    lua_setfield(L, -2, lib->name);\n")
	b.WriteString("  }\n")
	b.WriteString("  lua_pop(L, 2);\n")
	b.WriteString("}\n")

	return b.String()
}

func sortedModuleNames(spec *rockspec.Rockspec) []string {
	if spec == nil {
		return nil
	}
	names := make([]string, 0, len(spec.Build.Modules))
	for name := range spec.Build.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
