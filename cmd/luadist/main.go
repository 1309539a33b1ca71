// Command luadist is the CLI front-end over internal/orchestrator,
// grounded on cmd/dep's hand-rolled command-dispatch pattern: a closed
// list of command implementations, each owning its flag registration
// and help text, looked up by name out of os.Args.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/luadist2/luadist2/internal/config"
)

// command is the per-subcommand contract every luadist verb implements
// (spec.md §6's `install`, `make`, `remove`, `list`, `fetch`, `pack`,
// `static` CLI commands).
type command interface {
	Name() string
	Args() string
	ShortHelp() string
	LongHelp() string
	Register(*flag.FlagSet)
	Run(cfg config.Config, args []string) error
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	commands := []command{
		&installCommand{},
		&makeCommand{},
		&removeCommand{},
		&listCommand{},
		&fetchCommand{},
		&packCommand{},
		&staticCommand{},
	}

	errLogger := log.New(stderr, "", 0)

	usage := func() {
		errLogger.Println("luadist manages Lua rock dependencies")
		errLogger.Println()
		errLogger.Println("Usage: luadist <command> [flags] [args...]")
		errLogger.Println()
		errLogger.Println("Commands:")
		errLogger.Println()
		w := tabwriter.NewWriter(stderr, 0, 4, 2, ' ', 0)
		for _, cmd := range commands {
			fmt.Fprintf(w, "\t%s\t%s\n", cmd.Name(), cmd.ShortHelp())
		}
		w.Flush()
	}

	if len(args) < 2 {
		usage()
		return 1
	}
	cmdName := args[1]
	if cmdName == "-h" || cmdName == "--help" || cmdName == "help" {
		usage()
		return 1
	}

	for _, cmd := range commands {
		if cmd.Name() != cmdName {
			continue
		}

		fs := flag.NewFlagSet(cmdName, flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "luadist.toml", "path to a luadist.toml configuration file")
		debug := fs.Bool("debug", false, "retain staging directories and write a debug manifest copy")
		report := fs.Bool("report", false, "write a markdown activity report for this operation")
		cmd.Register(fs)

		resetUsage(errLogger, fs, cmdName, cmd.Args(), cmd.LongHelp())

		if err := fs.Parse(args[2:]); err != nil {
			return 1
		}

		cfg, err := config.Load(*configPath)
		if err != nil {
			errLogger.Printf("luadist: loading config: %v\n", err)
			return 1
		}
		if *debug {
			cfg.Debug = true
		}
		if *report {
			cfg.Report = true
		}

		if err := cmd.Run(cfg, fs.Args()); err != nil {
			errLogger.Printf("luadist: %v\n", err)
			return exitCodeOf(err)
		}
		return 0
	}

	errLogger.Printf("luadist: %s: no such command\n", cmdName)
	usage()
	return 1
}

func resetUsage(logger *log.Logger, fs *flag.FlagSet, name, args, longHelp string) {
	fs.Usage = func() {
		logger.Printf("Usage: luadist %s %s\n", name, args)
		logger.Println()
		logger.Println(strings.TrimSpace(longHelp))
		logger.Println()
		logger.Println("Flags:")
		fs.PrintDefaults()
	}
}
