package main

import (
	"os"

	"github.com/tmaehler/davbox/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
