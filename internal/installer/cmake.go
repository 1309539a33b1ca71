package installer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luadist2/luadist2/internal/rockspec"
)

// LibraryType selects the CMake library kind GenerateCMakeLists emits
// per module: MODULE for a normal loadable rock (spec.md §4.7), STATIC
// when internal/static is aggregating every package's modules into one
// executable (spec.md §4.9).
type LibraryType string

const (
	LibraryModule LibraryType = "MODULE"
	LibraryStatic LibraryType = "STATIC"
)

// GenerateCMakeLists translates a rockspec's build recipe into a
// CMakeLists.txt (spec.md §4.7 step 4): one target per build.modules
// entry, plus one install(FILES) rule per build.install entry.
// install(TARGETS ...) is only emitted for LibraryModule, since a
// STATIC build's targets are meant to be linked into the bundler's own
// aggregate executable rather than installed on their own.
func GenerateCMakeLists(rs *rockspec.Rockspec, libType LibraryType) (string, error) {
	if rs.Package == "" {
		return "", fmt.Errorf("installer: rockspec has no package name to generate a CMakeLists.txt for")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "cmake_minimum_required(VERSION 3.5)\n")
	fmt.Fprintf(&b, "project(%s C)\n\n", rs.Package)

	for _, name := range sortedStringKeys(rs.Build.Modules) {
		src := rs.Build.Modules[name]
		target := ModuleSymbolName(name)
		fmt.Fprintf(&b, "add_library(%s %s %s)\n", target, libType, src)
		if libType == LibraryModule {
			fmt.Fprintf(&b, "set_target_properties(%s PROPERTIES PREFIX \"\" OUTPUT_NAME \"%s\")\n", target, name)
			fmt.Fprintf(&b, "install(TARGETS %s DESTINATION lib)\n\n", target)
		} else {
			b.WriteString("\n")
		}
	}

	for _, dest := range sortedStringKeys(rs.Build.Install) {
		src := rs.Build.Install[dest]
		fmt.Fprintf(&b, "install(FILES %s DESTINATION %s)\n", src, dest)
	}

	return b.String(), nil
}

// ModuleSymbolName turns a dotted Lua module name into a valid C/CMake
// identifier, the same substitution spec.md §4.9 prescribes for the
// static bundler's preload-shim symbol names.
func ModuleSymbolName(moduleName string) string {
	return strings.ReplaceAll(moduleName, ".", "_")
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
