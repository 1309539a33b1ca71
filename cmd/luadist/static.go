package main

import (
	"flag"
	"fmt"

	"github.com/luadist2/luadist2/internal/config"
	"github.com/luadist2/luadist2/internal/orchestrator"
)

const staticShortHelp = `Emit a statically-linked build tree for the given packages`
const staticLongHelp = `
Resolves and fetches each named package, then emits a CMake build tree
under the destination directory that links every package's modules as
static libraries into one aggregate executable with a generated preload
shim. No install step runs.
`

type staticCommand struct {
	exeName string
}

func (cmd *staticCommand) Name() string      { return "static" }
func (cmd *staticCommand) Args() string      { return "<pkg...> <dest>" }
func (cmd *staticCommand) ShortHelp() string { return staticShortHelp }
func (cmd *staticCommand) LongHelp() string  { return staticLongHelp }

func (cmd *staticCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.exeName, "exe", "luadist_static", "name of the aggregate executable target")
}

func (cmd *staticCommand) Run(cfg config.Config, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("static: expected at least one package and a destination directory")
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

	_, err = ctx.Static(refs, dest, cmd.exeName)
	return err
}
