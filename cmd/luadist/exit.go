package main

import "github.com/luadist2/luadist2/internal/errs"

// exitCodeOf maps a command's returned error onto spec.md §7's
// eight-entry exit-code taxonomy, falling back to a generic failure
// code for any error raised outside it.
func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if code := errs.ExitCode(err); code != 0 {
		return code
	}
	return 1
}
