// Package main is the entry point for the flightrank CLI
package main

import (
	"os"

	_ "github.com/rushteam/flightrank/config/builders"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	if err := Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
