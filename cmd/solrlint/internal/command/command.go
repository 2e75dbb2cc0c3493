package command

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jacoelho/solrschema/cmd/solrlint/internal/view"
)

// CLI is shared state passed from the root command to every subcommand.
type CLI struct {
	view.Viewer
	*view.Stream
}

// Highlight applies the heading color to the given format and arguments.
func Highlight(format string, a ...any) string {
	return color.RGB(50, 108, 229).Sprintf(format, a...)
}

func NewCLI(vt view.ViewType, w io.Writer, logLevel view.LogLevel) *CLI {
	s := view.NewStream(w)

	return &CLI{
		Viewer: view.NewViewer(vt, s, logLevel),
		Stream: s,
	}
}

// MinArgsWithUsage returns an error if there are fewer than the minimum
// number of args, and shows usage information.
func MinArgsWithUsage(minArgs int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) >= minArgs {
			return nil
		}
		_ = cmd.Usage()
		if minArgs == 1 {
			return fmt.Errorf("requires at least 1 argument")
		}
		return fmt.Errorf("requires at least %d arguments", minArgs)
	}
}

// MaxArgs returns an error if there are more than the max number of args.
func MaxArgs(number int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) <= number {
			return nil
		}
		return fmt.Errorf("expected at most %d arguments, got %d", number, len(args))
	}
}
