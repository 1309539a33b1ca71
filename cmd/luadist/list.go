package main

import (
	"flag"
	"fmt"

	"github.com/luadist2/luadist2/internal/config"
	"github.com/luadist2/luadist2/internal/orchestrator"
)

const listShortHelp = `List installed packages`
const listLongHelp = `
Prints every package in the current InstalledSet, in install order.
`

type listCommand struct{}

func (cmd *listCommand) Name() string      { return "list" }
func (cmd *listCommand) Args() string      { return "" }
func (cmd *listCommand) ShortHelp() string { return listShortHelp }
func (cmd *listCommand) LongHelp() string  { return listLongHelp }
func (cmd *listCommand) Register(fs *flag.FlagSet) {}

func (cmd *listCommand) Run(cfg config.Config, args []string) error {
	ctx, err := orchestrator.NewContext(cfg)
	if err != nil {
		return err
	}
	defer ctx.Release()

	for _, pkg := range ctx.List() {
		fmt.Printf("%s %s\n", pkg.Name, pkg.Version)
	}
	return nil
}
