package installer

import (
	"path/filepath"
	"sort"
)

// buildVariables accumulates the CMake-like variable set spec.md §4.7
// step 3 describes: config defaults, then caller overrides, then the
// rockspec's own build.variables for any key not already set, then the
// mandatory install-prefix and search-path extensions, which always win.
func buildVariables(root string, defaults, overrides, rockspecVars map[string]string) map[string]string {
	vars := make(map[string]string, len(defaults)+len(overrides)+len(rockspecVars)+4)

	for k, v := range defaults {
		vars[k] = v
	}
	for k, v := range overrides {
		vars[k] = v
	}
	for k, v := range rockspecVars {
		if _, set := vars[k]; !set {
			vars[k] = v
		}
	}

	vars["CMAKE_INSTALL_PREFIX"] = root
	vars["CMAKE_INCLUDE_PATH"] = appendSearchPath(vars["CMAKE_INCLUDE_PATH"], filepath.Join(root, "include"))
	vars["CMAKE_LIBRARY_PATH"] = appendSearchPath(vars["CMAKE_LIBRARY_PATH"], filepath.Join(root, "lib"))
	vars["CMAKE_PROGRAM_PATH"] = appendSearchPath(vars["CMAKE_PROGRAM_PATH"], filepath.Join(root, "bin"))

	return vars
}

func appendSearchPath(existing, add string) string {
	if existing == "" {
		return add
	}
	return existing + string(filepath.ListSeparator) + add
}

// sortedKeys returns vars' keys sorted, for deterministic cache-script
// generation.
func sortedKeys(vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
