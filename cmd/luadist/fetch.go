package main

import (
	"flag"
	"fmt"

	"github.com/luadist2/luadist2/internal/config"
	"github.com/luadist2/luadist2/internal/orchestrator"
)

const fetchShortHelp = `Stage package sources without installing them`
const fetchLongHelp = `
Resolves every named package and stages its source tree under the temp
root, printing the staging directory used for each, without building or
installing anything.
`

type fetchCommand struct{}

func (cmd *fetchCommand) Name() string      { return "fetch" }
func (cmd *fetchCommand) Args() string      { return "<pkg...>" }
func (cmd *fetchCommand) ShortHelp() string { return fetchShortHelp }
func (cmd *fetchCommand) LongHelp() string  { return fetchLongHelp }
func (cmd *fetchCommand) Register(fs *flag.FlagSet) {}

func (cmd *fetchCommand) Run(cfg config.Config, args []string) error {
	refs, err := parseRefs(args)
	if err != nil {
		return err
	}

	ctx, err := orchestrator.NewContext(cfg)
	if err != nil {
		return err
	}
	defer ctx.Release()

	staged, _, err := ctx.Fetch(refs)
	if err != nil {
		return err
	}
	for key, dir := range staged {
		fmt.Printf("%s %s -> %s\n", key.Name, key.Version, dir)
	}
	return nil
}
