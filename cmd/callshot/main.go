package main

import (
	"os"

	"github.com/callshot/callshot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
