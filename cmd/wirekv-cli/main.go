// Package main provides the entry point for wirekv-cli.
//
// wirekv-cli is a small command-line client for a wirekv server.
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/wirekv-go/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
