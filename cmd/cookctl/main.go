package main

import (
	"os"

	"github.com/pterm/pterm"
)

// Version info (set during build)
var Version = "dev"

func run(args []string) error {
	return newApp().Run(args)
}

func main() {
	if err := run(os.Args); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
