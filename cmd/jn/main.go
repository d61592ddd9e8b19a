package main

import (
	"fmt"
	"os"

	"github.com/jnproject/jn/cmd/jn/commands"
)

// version is set by the build system via ldflags.
var version = "dev"

func main() {
	commands.SetVersion(version)
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
