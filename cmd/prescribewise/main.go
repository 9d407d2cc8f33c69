package main

import (
	"fmt"
	"os"

	"github.com/prescribewise/prescribewise-cli/internal/adapters/driving/cli"
)

// version is set by the release pipeline via -ldflags.
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
