// Package config loads the ambient configuration layer spec.md §6's
// Environment/Config table describes: built-in defaults, merged with an
// optional luadist.toml, with CLI flags taking final precedence over both
// (SPEC_FULL.md §3.2).
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config carries every field spec.md §6 enumerates under
// Environment/Config.
type Config struct {
	RootDir          string
	TempDir          string
	ManifestRepos    []string
	ManifestFilename string
	Platform         []string

	CacheCommand      string
	CacheDebugOptions string
	BuildCommand      string
	BuildDebugOptions string
	CMake             string

	IncludeLocalRepos bool
	Debug             bool
	Report            bool

	Variables map[string]string
}

// Default returns the built-in defaults every field falls back to absent
// an override from luadist.toml or a CLI flag.
func Default() Config {
	return Config{
		RootDir:           "lua_modules",
		TempDir:           filepath.Join("lua_modules", "tmp"),
		ManifestRepos:     []string{"https://github.com/luadist/luadist-rocks.git"},
		ManifestFilename:  "manifest",
		Platform:          []string{"unix"},
		CacheCommand:      "cmake",
		BuildCommand:      "cmake",
		CMake:             "cmake",
		IncludeLocalRepos: true,
		Variables:         map[string]string{},
	}
}

// Load reads path (a luadist.toml file) and merges it over Default(),
// field by field — an absent key in the file keeps the default rather
// than zeroing it out. A missing file is not an error: it simply yields
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "config: reading %s", path)
	}

	tree, err := toml.LoadBytes(data)
	if err != nil {
		return cfg, errors.Wrapf(err, "config: parsing %s", path)
	}

	m := &tomlMapper{Tree: tree}
	applyTomlOverrides(m, &cfg)
	if m.Error != nil {
		return cfg, errors.Wrapf(m.Error, "config: %s", path)
	}
	return cfg, nil
}

func applyTomlOverrides(m *tomlMapper, cfg *Config) {
	if v, ok := readString(m, "root_dir"); ok {
		cfg.RootDir = v
	}
	if v, ok := readString(m, "temp_dir"); ok {
		cfg.TempDir = v
	}
	if v, ok := readStringList(m, "manifest_repos"); ok {
		cfg.ManifestRepos = v
	}
	if v, ok := readString(m, "manifest_filename"); ok {
		cfg.ManifestFilename = v
	}
	if v, ok := readStringList(m, "platform"); ok {
		cfg.Platform = v
	}
	if v, ok := readString(m, "cache_command"); ok {
		cfg.CacheCommand = v
	}
	if v, ok := readString(m, "cache_debug_options"); ok {
		cfg.CacheDebugOptions = v
	}
	if v, ok := readString(m, "build_command"); ok {
		cfg.BuildCommand = v
	}
	if v, ok := readString(m, "build_debug_options"); ok {
		cfg.BuildDebugOptions = v
	}
	if v, ok := readString(m, "cmake"); ok {
		cfg.CMake = v
	}
	if v, ok := readBool(m, "include_local_repos"); ok {
		cfg.IncludeLocalRepos = v
	}
	if v, ok := readBool(m, "debug"); ok {
		cfg.Debug = v
	}
	if v, ok := readBool(m, "report"); ok {
		cfg.Report = v
	}
	if v, ok := readStringMap(m, "variables"); ok {
		cfg.Variables = v
	}
}
