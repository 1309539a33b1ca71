// Package packer implements pack: exporting an already-installed package
// as a redistributable binary rockspec, with a dependency-fingerprinting
// hash embedded in its version string (spec.md §4.8).
package packer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/termie/go-shutil"

	"github.com/luadist2/luadist2/internal/installedset"
	"github.com/luadist2/luadist2/internal/pkgval"
	"github.com/luadist2/luadist2/internal/rockspec"
)

// Pack exports every ref in refs from installed (reading their files
// out of deployDir) into destination, one "<name> <version>_<hash>/"
// directory per package, per spec.md §4.8.
func Pack(refs []pkgval.PackageRef, installed *installedset.InstalledSet, deployDir, destination, platform string) error {
	for _, ref := range refs {
		if err := packOne(ref, installed, deployDir, destination, platform); err != nil {
			return errors.Wrapf(err, "packer: packing %s", ref.Name)
		}
	}
	return nil
}

func packOne(ref pkgval.PackageRef, installed *installedset.InstalledSet, deployDir, destination, platform string) error {
	pkg, ok := installed.Find(ref)
	if !ok {
		return errors.Errorf("no installed package matches %s", ref)
	}
	if pkg.Spec == nil {
		return errors.Errorf("package %s has no attached rockspec to export", pkg.Name)
	}

	hash := DepHash(platform, pkg, installed)
	exportedVersion := pkg.Version.WithHash(hash)

	outDir := filepath.Join(destination, fmt.Sprintf("%s %s", pkg.Name, exportedVersion))
	copied := make([]string, 0, len(pkg.Files))
	for _, rel := range pkg.Files {
		src := filepath.Join(deployDir, rel)
		dst := filepath.Join(outDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}
		if _, err := shutil.Copy(src, dst, false); err != nil {
			return errors.Wrapf(err, "copying %s", rel)
		}
		copied = append(copied, filepath.ToSlash(rel))
	}

	exported := *pkg.Spec
	exported.Version = exportedVersion.String()
	exported.Files = copied
	exported.Dependencies = pessimisticDeps(pkg.BinDependencies, installed)
	exported.Description.BuiltOn = pkg.BuiltOnPlatform

	rsPath := filepath.Join(outDir, fmt.Sprintf("%s-%s.rockspec", pkg.Name, exportedVersion))
	if err := rockspec.Save(rsPath, &exported); err != nil {
		return errors.Wrapf(err, "writing exported rockspec")
	}
	return nil
}

// DepHash computes spec.md §4.8's dep_hash: a stable digest over
// platform plus the canonical version string of every one of pkg's
// bin_dependencies as currently resolved in installed, sorted by name
// so the result does not depend on dependency-declaration order.
func DepHash(platform string, pkg pkgval.Package, installed *installedset.InstalledSet) string {
	type entry struct{ name, key string }
	entries := make([]entry, 0, len(pkg.BinDependencies))
	for _, dep := range pkg.BinDependencies {
		resolved, ok := installed.Get(dep.Name)
		key := "missing"
		if ok {
			key = resolved.Version.CanonicalKey()
		}
		entries = append(entries, entry{name: dep.Name, key: key})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	var b strings.Builder
	b.WriteString(platform)
	for _, e := range entries {
		b.WriteByte('|')
		b.WriteString(e.name)
		b.WriteByte('@')
		b.WriteString(e.key)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:16]
}

// pessimisticDeps renders pkg.bin_dependencies as "name ~> major.minor"
// constraint strings against their currently-resolved version, per
// spec.md §4.8's exported-rockspec dependency rule.
func pessimisticDeps(deps []pkgval.PackageRef, installed *installedset.InstalledSet) []string {
	out := make([]string, 0, len(deps))
	for _, dep := range deps {
		resolved, ok := installed.Get(dep.Name)
		if !ok {
			continue
		}
		out = append(out, fmt.Sprintf("%s ~> %s", dep.Name, majorMinor(resolved.Version.CanonicalKey())))
	}
	return out
}

// majorMinor returns the first two dot-separated components of a
// canonical version key.
func majorMinor(canonicalKey string) string {
	parts := strings.SplitN(canonicalKey, ".", 3)
	if len(parts) < 2 {
		return canonicalKey
	}
	return parts[0] + "." + parts[1]
}
