// Package main is the entry point for the ordersift CLI.
package main

import (
	"os"

	"github.com/ordersift/ordersift/cmd/ordersift/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
