package installer

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/luadist2/luadist2/internal/installedset"
)

// RemovePackage implements the remove operation's ref-counted file
// deletion (DESIGN.md Open Question 3): name's files are unlinked from
// root unless another installed package still claims the same relative
// path, then name itself is dropped from the set. Callers are
// responsible for persisting the set afterward.
func RemovePackage(set *installedset.InstalledSet, root, name string) error {
	pkg, ok := set.Get(name)
	if !ok {
		return errors.Errorf("installer: %q is not installed", name)
	}

	for _, rel := range pkg.Files {
		if owners := set.FileOwners(rel, name); len(owners) > 0 {
			continue
		}
		abs := filepath.Join(root, rel)
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "installer: removing %s", abs)
		}
		removeEmptyParents(root, filepath.Dir(abs))
	}

	set.Remove(name)
	return nil
}

// removeEmptyParents walks upward from dir, removing directories left
// empty by a file removal, stopping at root.
func removeEmptyParents(root, dir string) {
	for {
		rel, err := filepath.Rel(root, dir)
		if err != nil || rel == "." || rel == ".." || len(rel) >= 2 && rel[:2] == ".." {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
