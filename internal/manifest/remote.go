package manifest

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/Masterminds/vcs"
	"github.com/pkg/errors"

	"github.com/luadist2/luadist2/internal/rockspec"
)

// isRemote reports whether repoURL names a remote-scheme source (spec.md
// §4.4: "If URL has a remote scheme (git transport) ... Otherwise, if
// local-repo inclusion is enabled, walk the URL as a directory").
func isRemote(repoURL string) bool {
	u, err := url.Parse(repoURL)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "git", "http", "https", "ssh", "git+ssh":
		return true
	default:
		return false
	}
}

// loadRemoteRepo clones repoURL into stagingDir (a full clone with
// history, not a shallow one; an existing clone is updated instead),
// checks out the default branch tip, and loads manifestFilename from
// inside it (spec.md §4.4).
func loadRemoteRepo(repoURL, stagingDir, manifestFilename string) (*Manifest, error) {
	if err := os.MkdirAll(filepath.Dir(stagingDir), 0755); err != nil {
		return nil, errors.Wrapf(err, "manifest: preparing staging dir for %s", repoURL)
	}

	repo, err := vcs.NewGitRepo(repoURL, stagingDir)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest: opening git source %s", repoURL)
	}

	if !repo.CheckLocal() {
		if err := repo.Get(); err != nil {
			return nil, errors.Wrapf(err, "manifest: cloning %s", repoURL)
		}
	} else if err := repo.Update(); err != nil {
		return nil, errors.Wrapf(err, "manifest: updating clone of %s", repoURL)
	}

	mp := filepath.Join(stagingDir, manifestFilename)
	data, err := os.ReadFile(mp)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest: reading %s from %s", manifestFilename, repoURL)
	}

	t, err := rockspec.Parse(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "manifest: parsing %s from %s", manifestFilename, repoURL)
	}

	m, err := parseManifestTable(t)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest: mapping %s from %s", manifestFilename, repoURL)
	}
	return m, nil
}

// stagingDirFor returns the per-URL staging directory layout
// "<tempRoot>/manifest_N" spec.md §6 prescribes.
func stagingDirFor(tempRoot string, index int) string {
	return filepath.Join(tempRoot, fmt.Sprintf("manifest_%d", index))
}
