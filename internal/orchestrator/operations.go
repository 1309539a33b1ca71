package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/luadist2/luadist2/internal/downloader"
	"github.com/luadist2/luadist2/internal/errs"
	"github.com/luadist2/luadist2/internal/installer"
	"github.com/luadist2/luadist2/internal/packer"
	"github.com/luadist2/luadist2/internal/pkgval"
	"github.com/luadist2/luadist2/internal/report"
	"github.com/luadist2/luadist2/internal/resolver"
	"github.com/luadist2/luadist2/internal/rockspec"
	"github.com/luadist2/luadist2/internal/static"
	"github.com/luadist2/luadist2/internal/version"
)

// resolvePlan runs the resolver (with Lua fallback) against targets,
// using the currently installed set as the starting working set
// (spec.md §4.5).
func (c *Context) resolvePlan(targets []pkgval.PackageRef) ([]pkgval.Package, error) {
	m, err := c.Manifest.GetManifest(c.Config.ManifestRepos)
	if err != nil {
		return nil, errs.New(errs.ManifestRetrieval, "", err)
	}

	plan, err := resolver.ResolveWithFallback(targets, c.Installed.Clone(), c.Config.Platform, m)
	if err != nil {
		return nil, errs.New(errs.Resolve, "", err)
	}
	return plan, nil
}

// runPlan drives every package in plan through FETCHING -> FETCHED ->
// LOADING_SPEC -> BUILDING/BINARY_COPY -> INSTALLING -> RECORDED
// (spec.md §4.10's per-package state machine), persisting the
// InstalledSet after each successful install so a mid-operation kill
// leaves prior successes on disk (spec.md §5).
func (c *Context) runPlan(plan []pkgval.Package, targetNames map[string]bool, rep *report.Report) error {
	if len(plan) == 0 {
		return nil
	}

	m, err := c.Manifest.GetManifest(c.Config.ManifestRepos)
	if err != nil {
		return errs.New(errs.ManifestRetrieval, "", err)
	}

	fetchDest := filepath.Join(c.Config.TempDir, "fetch")
	staged, err := downloader.Fetch(plan, fetchDest, m.RepoPath, m)
	if err != nil {
		return errs.New(errs.Fetch, "", err)
	}

	for _, pkg := range plan {
		kind := errs.InstallDep
		if targetNames[pkg.Name] {
			kind = errs.InstallTarget
		}

		srcDir, ok := staged[downloader.Key{Name: pkg.Name, Version: pkg.Version.String()}]
		if !ok {
			return errs.New(kind, pkg.Name, fmt.Errorf("no staged source directory for %s %s", pkg.Name, pkg.Version))
		}

		installed, err := installer.Install(pkg, srcDir, installer.Options{
			Root:            c.Config.RootDir,
			TempDir:         c.Config.TempDir,
			Config:          c.Config,
			CallerVariables: c.Config.Variables,
		})
		if err != nil {
			return errs.New(kind, pkg.Name, err)
		}

		installed.BinDependencies = runtimeDeps(installed.Spec)
		c.Installed.Append(installed)

		if err := c.Installed.Save(installedSetPath(c.Config)); err != nil {
			return errs.New(kind, pkg.Name, err)
		}

		if rep != nil {
			stage := "installed"
			detail := "built from source"
			if installed.Spec.IsBinary() {
				detail = "binary copy"
			}
			rep.Events = append(rep.Events, report.PackageEvent{
				Name: installed.Name, Version: installed.Version.String(), Stage: stage, Detail: detail,
			})
		}
	}

	return nil
}

// runtimeDeps parses a loaded rockspec's dependencies list into
// PackageRefs, becoming the installed Package's bin_dependencies
// (spec.md §4.8 reads these back out when packing).
func runtimeDeps(rs *rockspec.Rockspec) []pkgval.PackageRef {
	if rs == nil {
		return nil
	}
	out := make([]pkgval.PackageRef, 0, len(rs.Dependencies))
	for _, depStr := range rs.Dependencies {
		ref, err := pkgval.ParseDependencyString(depStr)
		if err != nil {
			continue
		}
		out = append(out, ref)
	}
	return out
}

// targetNameSet returns the set of package names the caller directly
// requested, used to classify a mid-plan failure as InstallTarget
// versus InstallDep (spec.md §7 kinds 4 and 5).
func targetNameSet(targets []pkgval.PackageRef) map[string]bool {
	out := make(map[string]bool, len(targets))
	for _, t := range targets {
		out[t.Name] = true
	}
	return out
}

// Install resolves and installs every ref in refs, in dependency order,
// skipping anything already satisfied by the installed set.
func (c *Context) Install(refs []pkgval.PackageRef) (*report.Report, error) {
	rep := &report.Report{Operation: "install"}

	plan, err := c.resolvePlan(refs)
	if err != nil {
		rep.Err = err
		return c.finishReport(rep)
	}

	if err := c.runPlan(plan, targetNameSet(refs), rep); err != nil {
		rep.Err = err
		return c.finishReport(rep)
	}

	return c.finishReport(rep)
}

// Make implements spec.md §4.10's make operation: the working directory
// itself is the source directory of whichever .rockspec sorts first
// alphabetically; its declared name/version become the sole target.
// Per DESIGN.md's resolution of the corresponding Open Question, any
// additional rockspecs found are reported as a warning, not installed.
func (c *Context) Make(workDir string) (*report.Report, error) {
	rep := &report.Report{Operation: "make"}

	matches, err := filepath.Glob(filepath.Join(workDir, "*.rockspec"))
	if err != nil {
		rep.Err = errs.New(errs.NoSourceFound, "", err)
		return c.finishReport(rep)
	}
	if len(matches) == 0 {
		rep.Err = errs.New(errs.NoSourceFound, "", fmt.Errorf("no .rockspec found in %s", workDir))
		return c.finishReport(rep)
	}
	sort.Strings(matches)
	chosen := matches[0]

	if len(matches) > 1 {
		c.Log.Infof("make: %d rockspecs found in %s, using %s\n", len(matches), workDir, filepath.Base(chosen))
	}

	rs, err := rockspec.Load(chosen)
	if err != nil {
		rep.Err = errs.New(errs.NoSourceFound, "", err)
		return c.finishReport(rep)
	}

	ver, err := version.Parse(rs.Version)
	if err != nil {
		rep.Err = errs.New(errs.NoSourceFound, "", err)
		return c.finishReport(rep)
	}
	target := pkgval.PackageRef{
		Name:       rs.Package,
		Constraint: version.Constraint{Clauses: []version.Clause{{Op: version.OpEqual, Version: ver}}},
	}
	plan, err := c.resolvePlan([]pkgval.PackageRef{target})
	if err != nil {
		rep.Err = err
		return c.finishReport(rep)
	}

	// The working-directory package itself is already "fetched": seed its
	// staging directory directly instead of running it through the
	// downloader, per spec.md §4.10's "the local working directory is
	// treated as the source directory".
	if err := c.runLocalPlan(plan, workDir, targetNameSet([]pkgval.PackageRef{target}), rep); err != nil {
		rep.Err = err
		return c.finishReport(rep)
	}

	if !c.Config.Debug {
		os.RemoveAll(workDir)
	}

	return c.finishReport(rep)
}

// runLocalPlan is runPlan specialized for make: the last package in plan
// (the make target, which the resolver orders after its dependencies) is
// installed directly from workDir;
// everything else (its transitive dependencies) is fetched normally.
func (c *Context) runLocalPlan(plan []pkgval.Package, workDir string, targetNames map[string]bool, rep *report.Report) error {
	if len(plan) == 0 {
		return nil
	}

	deps := plan[:len(plan)-1]
	self := plan[len(plan)-1]

	if len(deps) > 0 {
		if err := c.runPlan(deps, targetNames, rep); err != nil {
			return err
		}
	}

	kind := errs.InstallTarget
	installed, err := installer.Install(self, workDir, installer.Options{
		Root:            c.Config.RootDir,
		TempDir:         c.Config.TempDir,
		Config:          c.Config,
		CallerVariables: c.Config.Variables,
	})
	if err != nil {
		return errs.New(kind, self.Name, err)
	}

	installed.BinDependencies = runtimeDeps(installed.Spec)
	c.Installed.Append(installed)
	if err := c.Installed.Save(installedSetPath(c.Config)); err != nil {
		return errs.New(kind, self.Name, err)
	}

	rep.Events = append(rep.Events, report.PackageEvent{
		Name: installed.Name, Version: installed.Version.String(), Stage: "installed", Detail: "local working directory",
	})
	return nil
}

// Remove uninstalls every named package, ref-counting shared files
// against the remainder of the InstalledSet (spec.md §8's remove
// round-trip property; DESIGN.md's Open Question 3 decision).
func (c *Context) Remove(names []string) (*report.Report, error) {
	rep := &report.Report{Operation: "remove"}

	for _, name := range names {
		if err := installer.RemovePackage(c.Installed, c.Config.RootDir, name); err != nil {
			rep.Err = errs.New(errs.InstallTarget, name, err)
			return c.finishReport(rep)
		}
		if err := c.Installed.Save(installedSetPath(c.Config)); err != nil {
			rep.Err = errs.New(errs.InstallTarget, name, err)
			return c.finishReport(rep)
		}
		rep.Events = append(rep.Events, report.PackageEvent{Name: name, Stage: "removed"})
	}

	return c.finishReport(rep)
}

// List returns every currently installed package, in InstalledSet order.
func (c *Context) List() []pkgval.Package {
	return c.Installed.Ordered()
}

// Fetch stages every ref's source tree without installing it, returning
// the staging directory used for each.
func (c *Context) Fetch(refs []pkgval.PackageRef) (map[downloader.Key]string, *report.Report, error) {
	rep := &report.Report{Operation: "fetch"}

	plan, err := c.resolvePlan(refs)
	if err != nil {
		rep.Err = err
		_, rerr := c.finishReport(rep)
		return nil, rep, rerr
	}

	m, err := c.Manifest.GetManifest(c.Config.ManifestRepos)
	if err != nil {
		rep.Err = errs.New(errs.ManifestRetrieval, "", err)
		_, rerr := c.finishReport(rep)
		return nil, rep, rerr
	}

	dest := filepath.Join(c.Config.TempDir, "fetch")
	staged, err := downloader.Fetch(plan, dest, m.RepoPath, m)
	if err != nil {
		rep.Err = errs.New(errs.Fetch, "", err)
		_, rerr := c.finishReport(rep)
		return nil, rep, rerr
	}

	for _, pkg := range plan {
		rep.Events = append(rep.Events, report.PackageEvent{Name: pkg.Name, Version: pkg.Version.String(), Stage: "fetched"})
	}

	_, rerr := c.finishReport(rep)
	return staged, rep, rerr
}

// Pack exports every named installed package as a redistributable
// binary rockspec under destination (spec.md §4.8).
func (c *Context) Pack(refs []pkgval.PackageRef, destination string) (*report.Report, error) {
	rep := &report.Report{Operation: "pack"}

	platform := ""
	if len(c.Config.Platform) > 0 {
		platform = c.Config.Platform[0]
	}

	if err := packer.Pack(refs, c.Installed, c.Config.RootDir, destination, platform); err != nil {
		rep.Err = errs.New(errs.BinaryExport, "", err)
		return c.finishReport(rep)
	}

	for _, ref := range refs {
		rep.Events = append(rep.Events, report.PackageEvent{Name: ref.Name, Stage: "packed"})
	}

	return c.finishReport(rep)
}

// Static resolves refs, fetches every package's source, and emits a
// static-bundle build tree under destination without installing
// anything (spec.md §4.9).
func (c *Context) Static(refs []pkgval.PackageRef, destination, executableName string) (*report.Report, error) {
	rep := &report.Report{Operation: "static"}

	plan, err := c.resolvePlan(refs)
	if err != nil {
		rep.Err = err
		return c.finishReport(rep)
	}

	m, err := c.Manifest.GetManifest(c.Config.ManifestRepos)
	if err != nil {
		rep.Err = errs.New(errs.ManifestRetrieval, "", err)
		return c.finishReport(rep)
	}

	fetchDest := filepath.Join(c.Config.TempDir, "static-fetch")
	staged, err := downloader.Fetch(plan, fetchDest, m.RepoPath, m)
	if err != nil {
		rep.Err = errs.New(errs.Fetch, "", err)
		return c.finishReport(rep)
	}

	sources := make([]static.PackageSource, 0, len(plan))
	for _, pkg := range plan {
		dir := staged[downloader.Key{Name: pkg.Name, Version: pkg.Version.String()}]
		rsPath := filepath.Join(dir, fmt.Sprintf("%s-%s.rockspec", pkg.Name, pkg.Version))
		rs, err := rockspec.Load(rsPath)
		if err != nil {
			rep.Err = errs.New(errs.StaticBundle, pkg.Name, err)
			return c.finishReport(rep)
		}
		sources = append(sources, static.PackageSource{Package: pkg, Spec: rs, Dir: dir})
	}

	if err := os.MkdirAll(destination, 0755); err != nil {
		rep.Err = errs.New(errs.StaticBundle, "", err)
		return c.finishReport(rep)
	}

	top, err := static.GenerateTopLevelCMakeLists(sources, executableName)
	if err != nil {
		rep.Err = errs.New(errs.StaticBundle, "", err)
		return c.finishReport(rep)
	}
	if err := os.WriteFile(filepath.Join(destination, "CMakeLists.txt"), []byte(top), 0644); err != nil {
		rep.Err = errs.New(errs.StaticBundle, "", err)
		return c.finishReport(rep)
	}

	for _, src := range sources {
		sub, err := static.GenerateSubdirCMakeLists(src.Spec)
		if err != nil {
			rep.Err = errs.New(errs.StaticBundle, src.Package.Name, err)
			return c.finishReport(rep)
		}
		subdir := filepath.Join(destination, src.Package.Name)
		if err := os.MkdirAll(subdir, 0755); err != nil {
			rep.Err = errs.New(errs.StaticBundle, src.Package.Name, err)
			return c.finishReport(rep)
		}
		if err := os.WriteFile(filepath.Join(subdir, "CMakeLists.txt"), []byte(sub), 0644); err != nil {
			rep.Err = errs.New(errs.StaticBundle, src.Package.Name, err)
			return c.finishReport(rep)
		}
	}

	shim := static.GeneratePreloadShim(sources)
	if err := os.WriteFile(filepath.Join(destination, "preload_shim.c"), []byte(shim), 0644); err != nil {
		rep.Err = errs.New(errs.StaticBundle, "", err)
		return c.finishReport(rep)
	}

	for _, pkg := range plan {
		rep.Events = append(rep.Events, report.PackageEvent{Name: pkg.Name, Version: pkg.Version.String(), Stage: "bundled"})
	}

	return c.finishReport(rep)
}

// GetRockspec returns the rockspec of ref as it appears in the merged
// manifest's contributing local_url, or the one attached to an
// already-installed package, without fetching or installing anything.
func (c *Context) GetRockspec(ref pkgval.PackageRef) (*rockspec.Rockspec, error) {
	if pkg, ok := c.Installed.Find(ref); ok && pkg.Spec != nil {
		return pkg.Spec, nil
	}

	m, err := c.Manifest.GetManifest(c.Config.ManifestRepos)
	if err != nil {
		return nil, errs.New(errs.ManifestRetrieval, "", err)
	}

	for _, v := range m.Versions(ref.Name) {
		if !ref.Constraint.Matches(v) {
			continue
		}
		info, ok := m.Info(ref.Name, v)
		if !ok || info.LocalURL == "" {
			continue
		}
		rsPath := filepath.Join(info.LocalURL, fmt.Sprintf("%s-%s.rockspec", ref.Name, v))
		return rockspec.Load(rsPath)
	}

	return nil, errs.New(errs.Resolve, ref.Name, fmt.Errorf("no local_url manifest entry found for %s", ref))
}

// finishReport renders and, if c.Config.Report is set, writes rep's
// markdown to "<root>/<operation>.report.md" (spec.md §6: "report=true
// emits a markdown activity report per operation"). The original error,
// if any, is returned unchanged so callers still observe failure.
func (c *Context) finishReport(rep *report.Report) (*report.Report, error) {
	if c.Config.Report {
		if rendered, err := report.Render(*rep); err == nil {
			path := filepath.Join(c.Config.RootDir, rep.Operation+".report.md")
			if werr := os.WriteFile(path, []byte(rendered), 0644); werr != nil {
				c.Log.Infof("writing report: %v\n", werr)
			}
		} else {
			c.Log.Infof("rendering report: %v\n", err)
		}
	}
	return rep, rep.Err
}
