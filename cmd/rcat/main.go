package main

import (
	"os"

	"github.com/temirov/rcat/internal/cli"
)

// main is the entry point for the rcat command.
func main() {
	os.Exit(cli.Execute())
}
