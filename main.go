package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/compta/cli"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""
)

func main() {
	cli.Version = Version
	cli.CommitSHA = CommitSHA

	var commands cli.Commands
	ctx := kong.Parse(&commands,
		cli.Vars(),
		kong.Name("compta"),
		kong.Description("A small-business general ledger that derives its balance sheet, income statement and cash-flow statement."),
		kong.UsageOnError(),
		kong.Bind(&commands.Globals),
	)

	err := ctx.Run()

	var cmdErr *cli.CommandError
	if errors.As(err, &cmdErr) {
		if !cmdErr.Reported() {
			_, _ = fmt.Fprintf(os.Stderr, "compta: error: %s\n", cmdErr.Error())
		}
		os.Exit(cmdErr.ExitCode())
	}
	ctx.FatalIfErrorf(err)
}
