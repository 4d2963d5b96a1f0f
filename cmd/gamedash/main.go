package main

import (
	"os"

	"github.com/wonny/gamedash/cmd/gamedash/commands"
)

// main is the entry point for the gamedash CLI
// ⭐ Single CLI entry point: go run ./cmd/gamedash [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
