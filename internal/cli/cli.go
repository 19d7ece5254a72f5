package cli

import (
	"fmt"
	"io"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Seed    *SeedCommand
	Summary *SummaryCommand
	Export  *ExportCommand
	Enqueue *EnqueueCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(env *environment) (*goflags.Parser, *commands) {
	parser := goflags.NewParser(env.globals, goflags.HelpFlag|goflags.PassDoubleDash)
	parser.Name = "salesctl"
	parser.LongDescription = "Seed, summarize and export the sales dataset."

	cmds := &commands{
		Seed:    &SeedCommand{env: env},
		Summary: &SummaryCommand{env: env},
		Export:  &ExportCommand{env: env},
		Enqueue: &EnqueueCommand{env: env},
	}

	parser.AddCommand("seed", "Load records into the backend", "Replace the records of a writable backend with generated data or a CSV file.", cmds.Seed)
	parser.AddCommand("summary", "Print headline KPIs", "Print the headline KPIs and category shares for a filter.", cmds.Summary)
	parser.AddCommand("export", "Write filtered records to a file", "Write the filtered records as CSV, Excel or PDF.", cmds.Export)
	parser.AddCommand("enqueue", "Queue an export job", "Publish an export request for the export worker.", cmds.Enqueue)

	return parser, cmds
}

// Execute runs salesctl with os.Args and writes to stdout.
func Execute(version string) error {
	return RunWithArgs(version, os.Args[1:], os.Stdout)
}

// RunWithArgs parses args and executes the matched subcommand.
func RunWithArgs(version string, args []string, out io.Writer) error {
	return run(defaultEnvironment(&GlobalFlags{}, version, out), args)
}

func run(env *environment, args []string) error {
	// --version is valid without a subcommand.
	for _, arg := range args {
		if arg == "--version" {
			fmt.Fprintf(env.out, "salesctl %s\n", env.version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _ := buildParser(env)
	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok && flagsErr.Type == goflags.ErrHelp {
			fmt.Fprintln(env.out, flagsErr.Message)
			return nil
		}
		return err
	}
	return nil
}
