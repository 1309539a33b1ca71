package main

import (
	"flag"

	"github.com/luadist2/luadist2/internal/config"
	"github.com/luadist2/luadist2/internal/orchestrator"
)

const removeShortHelp = `Uninstall one or more packages`
const removeLongHelp = `
Removes each named package from the InstalledSet, unlinking its files
from the deploy root unless another installed package still shares
them.
`

type removeCommand struct{}

func (cmd *removeCommand) Name() string      { return "remove" }
func (cmd *removeCommand) Args() string      { return "<pkg...>" }
func (cmd *removeCommand) ShortHelp() string { return removeShortHelp }
func (cmd *removeCommand) LongHelp() string  { return removeLongHelp }
func (cmd *removeCommand) Register(fs *flag.FlagSet) {}

func (cmd *removeCommand) Run(cfg config.Config, args []string) error {
	ctx, err := orchestrator.NewContext(cfg)
	if err != nil {
		return err
	}
	defer ctx.Release()

	_, err = ctx.Remove(args)
	return err
}
