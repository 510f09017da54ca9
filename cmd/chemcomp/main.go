// Command chemcomp parses, canonicalizes and catalogs chemical compositions.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/chemcomp/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || !exitErr.Reported {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
