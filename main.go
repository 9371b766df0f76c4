// ./main.go
package main

import (
	"github.com/nullpath9/droidforge/cmd"
)

// main is the entry point for the droidforge CLI.
func main() {
	// Execute the root command defined in the cmd package.
	// This handles all command-line parsing, configuration, and execution.
	cmd.Execute()
}
