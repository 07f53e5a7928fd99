package main

import (
	"embed"
	"io/fs"

	"github.com/jamesinreallife/oram-public/internal/cli"
)

// Default lore, used when lore.dir is not set.
//
//go:embed lore/*.txt
var loreFiles embed.FS

func init() {
	sub, err := fs.Sub(loreFiles, "lore")
	if err != nil {
		return
	}
	cli.SetDefaultLore(sub)
}
