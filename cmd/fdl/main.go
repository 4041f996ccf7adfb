package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
)

// Args defines the command-line arguments with subcommands
type Args struct {
	Config  string `arg:"--config,env:FDL_CONFIG" help:"path to config file (default ~/.config/fdl/config.toml)"`
	Verbose bool   `arg:"-v,--verbose" help:"log debug messages"`

	Pick    *PickCmd    `arg:"subcommand:pick" help:"Interactively select files and export them (default)"`
	Copy    *CopyCmd    `arg:"subcommand:copy" help:"Export text files as FDL without the UI"`
	Paste   *PasteCmd   `arg:"subcommand:paste" help:"Write the files of an FDL document into a directory"`
	History *HistoryCmd `arg:"subcommand:history" help:"List recent copies, saves and pastes"`
	Init    *InitCmd    `arg:"subcommand:init" help:"Write a default config file"`
}

func (Args) Description() string {
	return "fdl packs a directory into one text document and unpacks it again."
}

// interactive reports whether the command owns the terminal.
func (a Args) interactive() bool {
	return a.Pick != nil
}

// Runner encapsulates the state and behavior for the CLI
type Runner struct {
	Args Args
	App  *App
}

// Run dispatches to the appropriate subcommand
func (r *Runner) Run() error {
	switch {
	case r.Args.Pick != nil:
		return r.App.Pick(*r.Args.Pick)
	case r.Args.Copy != nil:
		return r.App.Copy(*r.Args.Copy)
	case r.Args.Paste != nil:
		return r.App.Paste(*r.Args.Paste)
	case r.Args.History != nil:
		return r.App.ListHistory(*r.Args.History)
	case r.Args.Init != nil:
		return r.App.Init(*r.Args.Init)
	default:
		return fmt.Errorf("no subcommand specified, use 'pick', 'copy', 'paste', 'history' or 'init'")
	}
}

// main is our entrypoint: parse args and run the application
func main() {
	var args Args
	arg.MustParse(&args)

	// pick is the default subcommand
	if args.Pick == nil && args.Copy == nil && args.Paste == nil && args.History == nil && args.Init == nil {
		args.Pick = &PickCmd{}
	}

	app, cleanup, err := BuildApp(args)
	if err != nil {
		fatal(err)
	}

	runner := &Runner{Args: args, App: app}
	err = runner.Run()
	cleanup()
	if err != nil {
		fatal(err)
	}
}

// fatal writes err straight to stderr: once the slog default is installed the
// log package routes through it, and pick discards terminal logging.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "fdl: %v\n", err)
	os.Exit(1)
}
