package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// flagComplete prints every flag of the command, one per line, for shell
// completion scripts calling --generate-shell-completion.
func flagComplete(_ context.Context, cmd *cli.Command) {
	var w io.Writer = os.Stdout
	if cmd.Writer != nil {
		w = cmd.Writer
	}

	for _, f := range cmd.Flags {
		for _, name := range f.Names() {
			if len(name) == 1 {
				_, _ = fmt.Fprintln(w, "-"+name)
			} else {
				_, _ = fmt.Fprintln(w, "--"+name)
			}
		}
	}
}
