package installer

import (
	"fmt"
	"strings"
)

// writeCacheScript renders vars as a CMake cache-initializer script
// (spec.md §4.7 step 5: "each variable as SET(K V CACHE STRING \"\"
// FORCE)"), normalizing path separators to forward slashes the way CMake
// itself expects on every platform.
func writeCacheScript(vars map[string]string) string {
	var b strings.Builder
	for _, k := range sortedKeys(vars) {
		v := strings.ReplaceAll(vars[k], `\`, "/")
		fmt.Fprintf(&b, "SET(%s %q CACHE STRING \"\" FORCE)\n", k, v)
	}
	return b.String()
}
