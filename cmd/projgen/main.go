// Package main is the entry point for the projgen CLI.
package main

import (
	"fmt"
	"os"

	"github.com/opmodel/projgen/internal/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cmd.ExitCodeFromError(err))
	}
}
