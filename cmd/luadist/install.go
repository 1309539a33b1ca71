package main

import (
	"flag"

	"github.com/luadist2/luadist2/internal/config"
	"github.com/luadist2/luadist2/internal/orchestrator"
	"github.com/luadist2/luadist2/internal/pkgval"
)

const installShortHelp = `Resolve and install one or more packages`
const installLongHelp = `
Resolves every named package against the configured manifests, falls
back to an older Lua interpreter if the initial resolution fails and no
Lua is installed yet, then fetches, builds, and installs the resulting
plan in dependency order.
`

type installCommand struct{}

func (cmd *installCommand) Name() string      { return "install" }
func (cmd *installCommand) Args() string      { return "<pkg...>" }
func (cmd *installCommand) ShortHelp() string { return installShortHelp }
func (cmd *installCommand) LongHelp() string  { return installLongHelp }
func (cmd *installCommand) Register(fs *flag.FlagSet) {}

func (cmd *installCommand) Run(cfg config.Config, args []string) error {
	refs, err := parseRefs(args)
	if err != nil {
		return err
	}

	ctx, err := orchestrator.NewContext(cfg)
	if err != nil {
		return err
	}
	defer ctx.Release()

	_, err = ctx.Install(refs)
	return err
}

func parseRefs(args []string) ([]pkgval.PackageRef, error) {
	refs := make([]pkgval.PackageRef, 0, len(args))
	for _, a := range args {
		ref, err := pkgval.ParseDependencyString(a)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
