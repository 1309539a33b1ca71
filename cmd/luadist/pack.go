package main

import (
	"flag"
	"fmt"

	"github.com/luadist2/luadist2/internal/config"
	"github.com/luadist2/luadist2/internal/orchestrator"
)

const packShortHelp = `Export installed packages as redistributable binary rockspecs`
const packLongHelp = `
Packs each named installed package into "<name> <version>_<hash>/" under
the given destination directory, embedding a dependency fingerprint hash
in the exported version string.
`

type packCommand struct{}

func (cmd *packCommand) Name() string      { return "pack" }
func (cmd *packCommand) Args() string      { return "<pkg...> <dest>" }
func (cmd *packCommand) ShortHelp() string { return packShortHelp }
func (cmd *packCommand) LongHelp() string  { return packLongHelp }
func (cmd *packCommand) Register(fs *flag.FlagSet) {}

func (cmd *packCommand) Run(cfg config.Config, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("pack: expected at least one package and a destination directory")
	}
	dest := args[len(args)-1]
	refs, err := parseRefs(args[:len(args)-1])
	if err != nil {
		return err
	}

	ctx, err := orchestrator.NewContext(cfg)
	if err != nil {
		return err
	}
	defer ctx.Release()

	_, err = ctx.Pack(refs, dest)
	return err
}
