// Package downloader implements the fetch stage: given a resolved set of
// Packages, it populates a per-package staging directory with that
// package's source tree, either by copying a manifest-reported local_url
// directory into it (the local_url directory itself is never used in
// place) or by cloning one of the configured repo_paths (spec.md §4.6).
package downloader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/vcs"
	"github.com/pkg/errors"
	"github.com/termie/go-shutil"

	"github.com/luadist2/luadist2/internal/manifest"
	"github.com/luadist2/luadist2/internal/pkgval"
)

// Key identifies one fetched package by name and canonical version string,
// standing in for spec.md §4.6's "map<Package, local_dir>" return value:
// pkgval.Package itself is not a valid Go map key (it carries slice
// fields), so Fetch keys its result by this identity pair instead.
type Key struct {
	Name    string
	Version string
}

func keyOf(p pkgval.Package) Key {
	return Key{Name: p.Name, Version: p.Version.String()}
}

// Fetch stages every package in pkgs under dest, trying each package's
// manifest local_url first, then each of repoPaths in order, and returns
// the staging directory used for each. Idempotent: an existing staging
// directory that passes a shallow validity check (its rockspec is
// present) is reused rather than refetched (spec.md §4.6).
func Fetch(pkgs []pkgval.Package, dest string, repoPaths []string, m *manifest.Manifest) (map[Key]string, error) {
	out := make(map[Key]string, len(pkgs))

	for _, pkg := range pkgs {
		dir, err := fetchOne(pkg, dest, repoPaths, m)
		if err != nil {
			return nil, errors.Wrapf(err, "downloader: fetching %s %s", pkg.Name, pkg.Version)
		}
		out[keyOf(pkg)] = dir
	}

	return out, nil
}

// stagingDirFor returns "<dest>/<name> <version>", spec.md §4.6's
// per-package staging directory layout.
func stagingDirFor(dest string, pkg pkgval.Package) string {
	return filepath.Join(dest, fmt.Sprintf("%s %s", pkg.Name, pkg.Version))
}

func fetchOne(pkg pkgval.Package, dest string, repoPaths []string, m *manifest.Manifest) (string, error) {
	target := stagingDirFor(dest, pkg)

	if isValidStaging(target, pkg.Name) {
		return target, nil
	}

	info, ok := m.Info(pkg.Name, pkg.Version)
	if ok && info.LocalURL != "" {
		if err := copyLocal(info.LocalURL, target); err != nil {
			return "", err
		}
		return target, nil
	}

	var lastErr error
	for _, repoPath := range repoPaths {
		dir, err := fetchFromRepo(pkg, repoPath, target)
		if err != nil {
			lastErr = err
			continue
		}
		return dir, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no repo_path produced a source tree for %s %s", pkg.Name, pkg.Version)
	}
	return "", lastErr
}

// isValidStaging reports whether dir looks like an already-fetched source
// tree for name: present, and containing at least one matching
// .rockspec. This is the "shallow validity check" spec.md §4.6 calls for,
// not a full checksum of contents.
func isValidStaging(dir, name string) bool {
	matches, err := filepath.Glob(filepath.Join(dir, name+"-*.rockspec"))
	if err != nil {
		return false
	}
	return len(matches) > 0
}

// copyLocal stages a local_url directory by copying it with go-shutil's
// CopyTree, replacing whatever was at dst.
func copyLocal(src, dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return errors.Wrapf(err, "downloader: clearing stale staging dir %s", dst)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, "downloader: preparing staging dir %s", dst)
	}
	if err := shutil.CopyTree(src, dst, nil); err != nil {
		return errors.Wrapf(err, "downloader: copying local_url %s", src)
	}
	return nil
}

// fetchFromRepo clones repoPath into a scratch directory, locates the
// subdirectory named after pkg (the same first-level layout
// internal/manifest's local-repo scan expects), and copies it into
// target.
func fetchFromRepo(pkg pkgval.Package, repoPath, target string) (string, error) {
	scratch := target + ".clone"
	defer os.RemoveAll(scratch)

	if err := os.RemoveAll(scratch); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(scratch), 0755); err != nil {
		return "", err
	}

	repo, err := vcs.NewGitRepo(repoPath, scratch)
	if err != nil {
		return "", errors.Wrapf(err, "opening %s", repoPath)
	}
	if !repo.CheckLocal() {
		if err := repo.Get(); err != nil {
			return "", errors.Wrapf(err, "cloning %s", repoPath)
		}
	} else if err := repo.Update(); err != nil {
		return "", errors.Wrapf(err, "updating clone of %s", repoPath)
	}

	src := filepath.Join(scratch, pkg.Name)
	if !isValidStaging(src, pkg.Name) {
		return "", fmt.Errorf("%s does not contain a rockspec for %s", repoPath, pkg.Name)
	}

	if err := copyLocal(src, target); err != nil {
		return "", err
	}
	return target, nil
}
