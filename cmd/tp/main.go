package main

import (
	"os"

	"github.com/mvoss/teampulse-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
