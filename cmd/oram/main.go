package main

import (
	"os"

	"github.com/jamesinreallife/oram-public/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
