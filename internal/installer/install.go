// Package installer implements the build/install stage (spec.md §4.7):
// given a fetched package's source directory, it loads the rockspec,
// either short-circuits a prebuilt binary into place or drives a CMake
// configure/build/install cycle, and captures the resulting file list.
package installer

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/termie/go-shutil"

	"github.com/luadist2/luadist2/internal/config"
	"github.com/luadist2/luadist2/internal/pkgval"
	"github.com/luadist2/luadist2/internal/rockspec"
)

// Options carries everything Install needs beyond the package and its
// source directory: the deploy root, a scratch directory for build
// staging, the active config, and any caller-supplied CMake variable
// overrides (spec.md §4.7 step 3's "caller overrides").
type Options struct {
	Root            string
	TempDir         string
	Config          config.Config
	CallerVariables map[string]string
}

// Install runs the full per-package install pipeline and returns pkg
// with Spec, Files, and BuiltOnPlatform populated.
func Install(pkg pkgval.Package, srcDir string, opts Options) (pkgval.Package, error) {
	rsPath := filepath.Join(srcDir, fmt.Sprintf("%s-%s.rockspec", pkg.Name, pkg.Version))
	rs, err := rockspec.Load(rsPath)
	if err != nil {
		return pkgval.Package{}, errors.Wrapf(err, "installer: loading rockspec for %s %s", pkg.Name, pkg.Version)
	}
	pkg.Spec = rs

	if rs.IsBinary() {
		return installBinary(pkg, rs, srcDir, opts)
	}
	return buildAndInstall(pkg, rs, srcDir, opts)
}

// installBinary implements spec.md §4.7 step 2: a prebuilt rockspec is
// just copied into place, no build runs.
func installBinary(pkg pkgval.Package, rs *rockspec.Rockspec, srcDir string, opts Options) (pkgval.Package, error) {
	files := make([]string, 0, len(rs.Files))
	for _, rel := range rs.Files {
		src := filepath.Join(srcDir, rel)
		dst := filepath.Join(opts.Root, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return pkgval.Package{}, errors.Wrapf(err, "installer: preparing %s", dst)
		}
		if _, err := shutil.Copy(src, dst, false); err != nil {
			return pkgval.Package{}, errors.Wrapf(err, "installer: copying binary file %s", rel)
		}
		files = append(files, rel)
	}

	pkg.Version = pkg.Version.WithoutHash()
	pkg.Files = files
	pkg.BuiltOnPlatform = runtime.GOOS

	if !opts.Config.Debug {
		os.RemoveAll(srcDir)
	}
	return pkg, nil
}

// buildAndInstall implements spec.md §4.7 steps 3-7: CMake variable
// accumulation, CMakeLists translation or reuse, cache-script
// generation, configure/build/install subprocess invocation, and
// install-manifest capture.
func buildAndInstall(pkg pkgval.Package, rs *rockspec.Rockspec, srcDir string, opts Options) (pkgval.Package, error) {
	vars := buildVariables(opts.Root, defaultVariables(), opts.CallerVariables, rs.Build.Variables)

	cmakeListsPath := filepath.Join(srcDir, "CMakeLists.txt")
	useOwn := rs.Build.Type == rockspec.BuildCMake && fileExists(cmakeListsPath)
	if !useOwn {
		generated, err := GenerateCMakeLists(rs, LibraryModule)
		if err != nil {
			return pkgval.Package{}, errors.Wrapf(err, "installer: generating CMakeLists.txt for %s", pkg.Name)
		}
		if err := os.WriteFile(cmakeListsPath, []byte(generated), 0644); err != nil {
			return pkgval.Package{}, errors.Wrapf(err, "installer: writing generated CMakeLists.txt for %s", pkg.Name)
		}
	}

	buildDir := filepath.Join(opts.TempDir, pkg.Name+"-build")
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return pkgval.Package{}, errors.Wrapf(err, "installer: preparing build dir for %s", pkg.Name)
	}

	cacheInitPath := filepath.Join(buildDir, "cache_init.cmake")
	if err := os.WriteFile(cacheInitPath, []byte(writeCacheScript(vars)), 0644); err != nil {
		return pkgval.Package{}, errors.Wrapf(err, "installer: writing cache script for %s", pkg.Name)
	}

	cacheCmd := firstNonEmpty(opts.Config.CacheCommand, opts.Config.CMake, "cmake")
	buildCmd := firstNonEmpty(opts.Config.BuildCommand, opts.Config.CMake, "cmake")

	configureArgs := []string{"-C", cacheInitPath, srcDir}
	if opts.Config.Debug && opts.Config.CacheDebugOptions != "" {
		configureArgs = append(configureArgs, strings.Fields(opts.Config.CacheDebugOptions)...)
	}
	if _, err := runIn(buildDir, cacheCmd, configureArgs...); err != nil {
		return pkgval.Package{}, errors.Wrapf(err, "installer: configuring %s", pkg.Name)
	}

	buildArgs := []string{"--build", "."}
	if opts.Config.Debug && opts.Config.BuildDebugOptions != "" {
		buildArgs = append(buildArgs, strings.Fields(opts.Config.BuildDebugOptions)...)
	}
	if _, err := runIn(buildDir, buildCmd, buildArgs...); err != nil {
		return pkgval.Package{}, errors.Wrapf(err, "installer: building %s", pkg.Name)
	}

	if _, err := runIn(buildDir, buildCmd, "--build", ".", "--target", "install"); err != nil {
		return pkgval.Package{}, errors.Wrapf(err, "installer: installing %s", pkg.Name)
	}

	manifestPath := filepath.Join(buildDir, "install_manifest.txt")
	files, err := readInstallManifest(manifestPath, opts.Root)
	if err != nil {
		return pkgval.Package{}, errors.Wrapf(err, "installer: reading install manifest for %s", pkg.Name)
	}
	pkg.Files = files
	pkg.BuiltOnPlatform = runtime.GOOS

	if !opts.Config.Debug {
		os.RemoveAll(srcDir)
		os.RemoveAll(buildDir)
	}
	return pkg, nil
}

// readInstallManifest reads CMake's install_manifest.txt (absolute paths,
// one per line) and relativizes each against root (spec.md §4.7 step 6).
func readInstallManifest(path, root string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var files []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rel, err := filepath.Rel(root, line)
		if err != nil {
			return nil, errors.Wrapf(err, "relativizing %q against %q", line, root)
		}
		files = append(files, filepath.ToSlash(rel))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

func defaultVariables() map[string]string {
	return map[string]string{}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
