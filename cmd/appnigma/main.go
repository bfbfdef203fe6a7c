package main

import (
	"os"

	"github.com/appnigma/go-integrations-client/cmd/appnigma/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
