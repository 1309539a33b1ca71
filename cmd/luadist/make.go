package main

import (
	"flag"
	"os"

	"github.com/luadist2/luadist2/internal/config"
	"github.com/luadist2/luadist2/internal/orchestrator"
)

const makeShortHelp = `Install the rockspec found in the current directory`
const makeLongHelp = `
Treats the current working directory as the source tree of a package:
the alphabetically-first .rockspec present names the package and
version to install. On success the working directory is removed unless
debug mode is set.
`

type makeCommand struct{}

func (cmd *makeCommand) Name() string      { return "make" }
func (cmd *makeCommand) Args() string      { return "" }
func (cmd *makeCommand) ShortHelp() string { return makeShortHelp }
func (cmd *makeCommand) LongHelp() string  { return makeLongHelp }
func (cmd *makeCommand) Register(fs *flag.FlagSet) {}

func (cmd *makeCommand) Run(cfg config.Config, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	ctx, err := orchestrator.NewContext(cfg)
	if err != nil {
		return err
	}
	defer ctx.Release()

	_, err = ctx.Make(wd)
	return err
}
