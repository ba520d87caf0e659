package main

import (
	"os"

	"github.com/mhzhou/ashare-screener/cmd/screener/commands"
)

// main is the entry point for the screener CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
