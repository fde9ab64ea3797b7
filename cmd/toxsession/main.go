package main

import (
	"os"

	"github.com/opd-ai/toxsession/cmd/toxsession/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
