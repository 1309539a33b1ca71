package rockspec

import "github.com/pkg/errors"

// BuildType enumerates the closed set of build mechanisms a rockspec may
// name (spec.md §3).
type BuildType string

const (
	BuildCMake   BuildType = "cmake"
	BuildBuiltin BuildType = "builtin"
	BuildNone    BuildType = "none"
)

// Description holds the free-text metadata fields of a rockspec.
type Description struct {
	Summary  string
	Homepage string
	License  string
	BuiltOn  string
}

// Source holds the fetch location of a rockspec's upstream sources.
type Source struct {
	URL    string
	Tag    string
	Branch string
}

// Build holds the build recipe of a rockspec (spec.md §3 "build.{type,
// variables, modules, install}").
type Build struct {
	Type      BuildType
	Variables map[string]string
	Modules   map[string]string
	Install   map[string]string
}

// Rockspec is the structured package descriptor: metadata plus build
// recipe, recognized from the closed field enumeration in spec.md §3.
// Files is present only on an already-built binary package (spec.md
// §4.7's binary short-circuit dispatches on Files != nil).
type Rockspec struct {
	Package     string
	Version     string
	Source      Source
	Description Description
	Dependencies []string
	SupportedPlatforms []string
	Build       Build

	// Files, when non-nil, marks this as a prebuilt binary rockspec
	// (spec.md §4.7 step 2 and §9's Source|Binary tagged-variant note).
	Files []string
}

// IsBinary reports whether this rockspec describes an already-built
// package whose files are simply copied into place rather than built.
func (r *Rockspec) IsBinary() bool {
	return r.Files != nil
}

// FromTable maps a parsed *Table into a Rockspec, enforcing the closed
// field enumeration spec.md §3 lists. Unknown top-level fields are
// ignored (a rockspec may carry vendor extensions a loader doesn't need).
// package and version must be strings, and dependencies and
// supported_platforms must be string lists if present; any other
// recognized field holding a value of the wrong type is skipped without
// an error.
func FromTable(t *Table) (*Rockspec, error) {
	m := &tableMapper{Table: t}

	r := &Rockspec{
		Package:            readString(m, "package", true),
		Version:            readString(m, "version", true),
		Dependencies:       readStringList(m, "dependencies"),
		SupportedPlatforms: readStringList(m, "supported_platforms"),
	}

	if src := readSubtable(m, "source"); src != nil {
		sm := &tableMapper{Table: src}
		r.Source = Source{
			URL:    readString(sm, "url", false),
			Tag:    readString(sm, "tag", false),
			Branch: readString(sm, "branch", false),
		}
		if sm.Error != nil && m.Error == nil {
			m.Error = errors.Wrap(sm.Error, "source")
		}
	}

	if desc := readSubtable(m, "description"); desc != nil {
		dm := &tableMapper{Table: desc}
		r.Description = Description{
			Summary:  readString(dm, "summary", false),
			Homepage: readString(dm, "homepage", false),
			License:  readString(dm, "license", false),
			BuiltOn:  readString(dm, "built_on", false),
		}
		if dm.Error != nil && m.Error == nil {
			m.Error = errors.Wrap(dm.Error, "description")
		}
	}

	if build := readSubtable(m, "build"); build != nil {
		bm := &tableMapper{Table: build}
		r.Build = Build{
			Type:      BuildType(readString(bm, "type", false)),
			Variables: readStringMap(build, "variables"),
			Modules:   readStringMap(build, "modules"),
			Install:   readStringMap(build, "install"),
		}
		if bm.Error != nil && m.Error == nil {
			m.Error = errors.Wrap(bm.Error, "build")
		}
	}

	if files, ok := t.GetStringList("files"); ok {
		r.Files = files
	}

	if m.Error != nil {
		return nil, errors.Wrapf(m.Error, "rockspec %q", r.Package)
	}
	return r, nil
}

func readStringMap(t *Table, key string) map[string]string {
	sub, ok := t.GetTable(key)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(sub.Keys()))
	for _, k := range sub.Keys() {
		v, _ := sub.Get(k)
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// ToTable renders a Rockspec back into a *Table for persistence, used by
// the packer when exporting a redistributable rockspec (spec.md §4.8).
func (r *Rockspec) ToTable() *Table {
	t := NewTable()
	t.Set("package", r.Package)
	t.Set("version", r.Version)

	src := NewTable()
	if r.Source.URL != "" {
		src.Set("url", r.Source.URL)
	}
	if r.Source.Tag != "" {
		src.Set("tag", r.Source.Tag)
	}
	if r.Source.Branch != "" {
		src.Set("branch", r.Source.Branch)
	}
	if len(src.Keys()) > 0 {
		t.Set("source", src)
	}

	desc := NewTable()
	if r.Description.Summary != "" {
		desc.Set("summary", r.Description.Summary)
	}
	if r.Description.Homepage != "" {
		desc.Set("homepage", r.Description.Homepage)
	}
	if r.Description.License != "" {
		desc.Set("license", r.Description.License)
	}
	if r.Description.BuiltOn != "" {
		desc.Set("built_on", r.Description.BuiltOn)
	}
	if len(desc.Keys()) > 0 {
		t.Set("description", desc)
	}

	if len(r.Dependencies) > 0 {
		t.Set("dependencies", stringListValue(r.Dependencies))
	}
	if len(r.SupportedPlatforms) > 0 {
		t.Set("supported_platforms", stringListValue(r.SupportedPlatforms))
	}

	if r.Build.Type != "" || len(r.Build.Variables) > 0 || len(r.Build.Modules) > 0 || len(r.Build.Install) > 0 {
		build := NewTable()
		if r.Build.Type != "" {
			build.Set("type", string(r.Build.Type))
		}
		if len(r.Build.Variables) > 0 {
			build.Set("variables", stringMapValue(r.Build.Variables))
		}
		if len(r.Build.Modules) > 0 {
			build.Set("modules", stringMapValue(r.Build.Modules))
		}
		if len(r.Build.Install) > 0 {
			build.Set("install", stringMapValue(r.Build.Install))
		}
		t.Set("build", build)
	}

	if r.Files != nil {
		t.Set("files", stringListValue(r.Files))
	}

	return t
}

func stringListValue(ss []string) []Value {
	out := make([]Value, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func stringMapValue(m map[string]string) *Table {
	t := NewTable()
	for k, v := range m {
		t.Set(k, v)
	}
	return t
}
