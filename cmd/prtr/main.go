// Command prtr formats, checks and canonicalizes Turtle and N-Triples
// files.
package main

import (
	"fmt"
	"os"

	"github.com/rdfprtr/prtr/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}
