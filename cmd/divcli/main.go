// Command divcli builds a dividend ledger, statistics and an allocation plan
// for the holdings of a CSV file (ticker,shareCount,acquisitionDate), using
// the dividend provider configured in the environment.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/username/divtracker/backend/src/config"
	"github.com/username/divtracker/backend/src/logger"
)

func main() {
	cfg := config.LoadConfig()
	logger.InitLoggerWithWriter(cfg.LogLevel, os.Stderr, "text")

	a := &app{cfg: cfg, out: os.Stdout}
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range a.commands() {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
