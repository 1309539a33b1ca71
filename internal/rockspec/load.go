package rockspec

import (
	"os"

	"github.com/pkg/errors"
)

// Load reads and parses the rockspec at path, evaluating it in the
// restricted table evaluator (spec.md §4.4: "denies function values
// inside the returned table but permits nested tables, strings, numbers,
// booleans, and nil"; "the evaluator isolates its global environment so
// that evaluation cannot mutate process-wide state" — here that isolation
// is structural: Parse has no access to any process state at all, it only
// builds a value tree).
func Load(path string) (*Rockspec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "rockspec: reading %s", path)
	}
	t, err := Parse(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "rockspec: parsing %s", path)
	}
	rs, err := FromTable(t)
	if err != nil {
		return nil, errors.Wrapf(err, "rockspec: mapping %s", path)
	}
	return rs, nil
}

// Save writes spec back out as a pretty-printed table record at path,
// used by the packer to emit an exported rockspec (spec.md §4.8).
func Save(path string, spec *Rockspec) error {
	content := Encode(spec.ToTable())
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, "rockspec: writing %s", path)
	}
	return nil
}
