// Command mfund replays and rebalances a personally filtered copy of a reference fund.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/mirror/cmd"
	"github.com/google/subcommands"
)

func main() {
	// exits when called by the shell for completion
	cmd.Completion().Complete("mfund")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
