package main

import (
	"os"

	"github.com/lode-build/lode/cmd/lode/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
