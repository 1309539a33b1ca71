package manifest

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/luadist2/luadist2/internal/rockspec"
)

// Store loads and merges upstream manifests, memoizing the result for
// the lifetime of one process invocation (spec.md §3: "The in-memory
// manifest returned by the manifest store is immutable for a single
// process invocation (cached after first successful load)").
type Store struct {
	TempRoot          string
	ManifestFilename  string
	IncludeLocalRepos bool
	Debug             bool

	cached *Manifest
}

// GetManifest returns the memoized merged manifest for repos, loading
// and merging it on first call.
func (s *Store) GetManifest(repos []string) (*Manifest, error) {
	if s.cached != nil {
		return s.cached, nil
	}
	m, err := s.DownloadManifest(repos)
	if err != nil {
		return nil, err
	}
	s.cached = m
	return m, nil
}

// DownloadManifest loads each repo URL in order and merges the results
// with first-wins precedence (spec.md §4.4). On any per-URL load failure
// the whole operation fails, per spec.md §7's ManifestRetrieval error
// kind.
func (s *Store) DownloadManifest(repos []string) (*Manifest, error) {
	merged := newManifest()

	for i, repoURL := range repos {
		var (
			m   *Manifest
			err error
		)

		if isRemote(repoURL) {
			staging := stagingDirFor(s.TempRoot, i)
			m, err = loadRemoteRepo(repoURL, staging, s.ManifestFilename)
		} else if s.IncludeLocalRepos {
			m, err = loadLocalRepo(repoURL)
		} else {
			err = errors.Errorf("manifest: local repos disabled, cannot load %s", repoURL)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "manifest: loading source %d (%s)", i, repoURL)
		}

		mergeInto(merged, m)
		merged.RepoPath = append(merged.RepoPath, repoURL)
	}

	if s.Debug {
		if err := writeDebugCopy(s.TempRoot, merged); err != nil {
			return nil, errors.Wrap(err, "manifest: writing debug copy")
		}
	}

	return merged, nil
}

// mergeInto folds src into dst, keeping dst's existing (name, version)
// entries and only adding what src has that dst doesn't (spec.md §4.4:
// "later URLs contribute only packages or versions absent from the
// accumulated result").
func mergeInto(dst, src *Manifest) {
	for name, versions := range src.Packages {
		for vkey, info := range versions {
			dst.put(name, vkey, info)
		}
	}
}

func writeDebugCopy(tempRoot string, m *Manifest) error {
	if err := os.MkdirAll(tempRoot, 0755); err != nil {
		return err
	}
	content := rockspec.Encode(encodeManifestTable(m))
	return os.WriteFile(filepath.Join(tempRoot, "manifest.debug"), []byte(content), 0644)
}
