package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Generate *GenerateCommand
	Preview  *PreviewCommand
	Serve    *ServeCommand
	Inspect  *InspectCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "backstory"
	parser.LongDescription = "Generate a Chrome History file filled with plausible student browsing activity."

	cmds := &commands{
		Generate: &GenerateCommand{globals: &globals, version: version},
		Preview:  &PreviewCommand{globals: &globals, version: version},
		Serve:    &ServeCommand{globals: &globals, version: version},
		Inspect:  &InspectCommand{globals: &globals, version: version},
	}

	parser.AddCommand("generate", "Generate a History file", "Generate a Chrome History SQLite file covering the requested window.", cmds.Generate)
	parser.AddCommand("preview", "Preview generated visits", "Generate in memory and print the most recent visits without writing a file.", cmds.Preview)
	parser.AddCommand("serve", "Start the HTTP API", "Start the HTTP API serving History downloads and previews.", cmds.Serve)
	parser.AddCommand("inspect", "Inspect an existing History file", "Open an existing History file read-only and print its statistics.", cmds.Inspect)

	return parser, &globals, cmds
}

// Run is the main entry point for the Backstory CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("backstory %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
