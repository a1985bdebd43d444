package cli

import "github.com/alecthomas/kong"

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Config    string           `help:"Configuration file (defaults to compta.toml when present)." type:"path" placeholder:"FILE"`
	EnvFile   string           `help:"Environment file (defaults to .env when present)." name:"env-file" type:"path" placeholder:"FILE"`
	Telemetry bool             `help:"Show timing telemetry for operations."`
	LogLevel  string           `help:"Log level: debug, info, warn or error. Overrides the configuration." name:"log-level" placeholder:"LEVEL"`
	Version   kong.VersionFlag `help:"Show version information."`
}

type Commands struct {
	Globals

	List     ListCmd     `cmd:"" help:"List entries, newest first."`
	Add      AddCmd      `cmd:"" help:"Register an entry."`
	Delete   DeleteCmd   `cmd:"" help:"Delete an entry."`
	Report   ReportCmd   `cmd:"" help:"Show the derived financial statements."`
	Close    CloseCmd    `cmd:"" help:"Close the exercise: fold the net result into retained earnings."`
	Auto     AutoCmd     `cmd:"" help:"Register entries from free text or structured operations."`
	Classify ClassifyCmd `cmd:"" help:"Preview how a label would be classified."`
	Import   ImportCmd   `cmd:"" help:"Apply scenario files to the ledger."`
	Check    CheckCmd    `cmd:"" help:"Apply a scenario file to an empty ledger and check that it balances."`
	Serve    ServeCmd    `cmd:"" help:"Start the HTTP server."`
	Doctor   DoctorCmd   `cmd:"" help:"Doctor utilities for debugging the ledger."`
}

// Vars are the interpolation variables used in command help.
func Vars() kong.Vars {
	version := Version
	if version == "" {
		version = "dev"
	}
	if CommitSHA != "" {
		version += " (" + CommitSHA + ")"
	}
	return kong.Vars{
		"version": version,
		"keys":    operationKeysHelp(),
	}
}
