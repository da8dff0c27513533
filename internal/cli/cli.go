package cli

import (
	"fmt"
	"io"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// IO bundles the streams a command runs against.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, streams IO) int
}

func Run(args []string, streams IO) int {
	if len(args) == 0 {
		printUsage(streams.Out)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(streams.Out)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(streams.Err, "Unknown command: %s\n\n", args[0])
		printUsage(streams.Err)
		return ExitUsage
	}
	return cmd.Run(args[1:], streams)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  quiz <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"quiz <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, streams IO) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands []*Command

func init() {
	commands = []*Command{
		command("play", "Take a quiz from a file or a lecture on the server", []string{
			"quiz play --file <set.json|set.yaml> [--state <path>] [--policy <name>]",
			"quiz play --server <url> --lecture <id> [--state <path>] [--policy <name>]",
		}, runPlay),
		command("validate", "Check quiz set files", []string{
			"quiz validate <file>...",
		}, runValidate),
		command("lectures", "List lectures on the server", []string{
			"quiz lectures --server <url> [--subject <id>]",
		}, runLectures),
	}
}
