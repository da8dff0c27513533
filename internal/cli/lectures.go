package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/quiz-club/backend/internal/apiclient"
)

// runLectures builds the handler for the lectures command.
func runLectures(cmd *Command) func(args []string, streams IO) int {
	return func(args []string, streams IO) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, streams.Out)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(streams.Err)
		server := flags.String("server", "", "Quiz server base URL")
		subject := flags.Int64("subject", 0, "Only lectures of this subject id")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, streams.Out)
				return ExitOK
			}
			fmt.Fprintf(streams.Err, "invalid arguments: %v\n", err)
			printCommandUsage(cmd, streams.Err)
			return ExitUsage
		}
		if *server == "" {
			fmt.Fprintln(streams.Err, "--server is required")
			printCommandUsage(cmd, streams.Err)
			return ExitUsage
		}

		client, err := apiclient.New(*server)
		if err != nil {
			fmt.Fprintf(streams.Err, "%v\n", err)
			return ExitUsage
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		lectures, err := client.Lectures(ctx, *subject)
		if err != nil {
			fmt.Fprintf(streams.Err, "%v\n", err)
			return ExitError
		}
		if len(lectures) == 0 {
			fmt.Fprintln(streams.Out, "No lectures.")
			return ExitOK
		}
		for _, l := range lectures {
			fmt.Fprintf(streams.Out, "%5d  %s\n", l.ID, l.Name)
		}
		return ExitOK
	}
}
