package cli

import (
	"errors"
	"fmt"

	"github.com/quiz-club/backend/internal/quizset"
)

// runValidate builds the handler for the validate command.
func runValidate(cmd *Command) func(args []string, streams IO) int {
	return func(args []string, streams IO) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, streams.Out)
			return ExitOK
		}
		if len(args) == 0 {
			fmt.Fprintln(streams.Err, "no files given")
			printCommandUsage(cmd, streams.Err)
			return ExitUsage
		}

		code := ExitOK
		for _, path := range args {
			set, err := quizset.Load(path)
			if err != nil {
				code = ExitError
				var verr *quizset.ValidationError
				if errors.As(err, &verr) {
					fmt.Fprintf(streams.Err, "%s: %d problem(s)\n", path, len(verr.Errors))
					for _, msg := range verr.Errors {
						fmt.Fprintf(streams.Err, "  - %s\n", msg)
					}
					continue
				}
				fmt.Fprintf(streams.Err, "%s: %v\n", path, err)
				continue
			}
			fmt.Fprintf(streams.Out, "%s: OK (%s, %d questions)\n", path, set.ID, set.Len())
		}
		return code
	}
}
