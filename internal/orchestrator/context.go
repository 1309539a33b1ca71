// Package orchestrator composes the downloader, installer, packer,
// static bundler, and resolver into the top-level operations spec.md
// §4.10 names: install, make, static, pack, remove, fetch, get_rockspec.
// Each operation brackets its work with an explicit *Context acquired
// and released around it, standing in for spec.md §9's process-wide
// update_root_dir/revert_root_dir design note.
package orchestrator

import (
	"os"
	"path/filepath"

	"github.com/gonuts/logger"
	"github.com/pkg/errors"

	"github.com/luadist2/luadist2/internal/config"
	"github.com/luadist2/luadist2/internal/installedset"
	"github.com/luadist2/luadist2/internal/lock"
	"github.com/luadist2/luadist2/internal/manifest"
)

// installedSetFileName is the implementer-chosen name for spec.md §6's
// "<root>/<local-manifest-file>": the persisted InstalledSet record.
const installedSetFileName = "lua_modules.manifest"

// Context is the per-operation bracket spec.md §9 calls for: one
// exclusive Lock over the deploy root, the InstalledSet loaded from it,
// and the manifest Store shared by every operation that needs to
// resolve. Grounded on the teacher's Ctx/LoadProject bracket
// (context.go), generalized from "one GOPATH-scoped project" to "one
// deploy-root-scoped operation".
type Context struct {
	Config    config.Config
	Manifest  *manifest.Store
	Installed *installedset.InstalledSet
	Log       *logger.Logger

	lock *lock.Lock
}

// NewContext acquires the exclusive lock over cfg.RootDir, loads the
// persisted InstalledSet, and returns a Context ready to run one
// top-level operation. Callers must defer ctx.Release().
func NewContext(cfg config.Config) (*Context, error) {
	if err := os.MkdirAll(cfg.RootDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "orchestrator: preparing deploy root %s", cfg.RootDir)
	}

	l := lock.New(cfg.RootDir)
	if err := l.Acquire(); err != nil {
		return nil, errors.Wrap(err, "orchestrator: acquiring exclusive lock")
	}

	installed, err := installedset.Load(installedSetPath(cfg))
	if err != nil {
		l.Release()
		return nil, err
	}

	store := &manifest.Store{
		TempRoot:          cfg.TempDir,
		ManifestFilename:  cfg.ManifestFilename,
		IncludeLocalRepos: cfg.IncludeLocalRepos,
		Debug:             cfg.Debug,
	}

	return &Context{
		Config:    cfg,
		Manifest:  store,
		Installed: installed,
		Log:       logger.New("luadist"),
		lock:      l,
	}, nil
}

// Release persists the InstalledSet (best-effort: a save failure is
// logged, not returned, since the lock must still be dropped) and
// releases the exclusive lock. Safe to call once per NewContext.
func (c *Context) Release() error {
	if err := c.Installed.Save(installedSetPath(c.Config)); err != nil {
		c.Log.Infof("saving installed set: %v\n", err)
	}
	return c.lock.Release()
}

func installedSetPath(cfg config.Config) string {
	return filepath.Join(cfg.RootDir, installedSetFileName)
}
