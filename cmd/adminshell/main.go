package main

import (
	"os"

	"github.com/jmcleod/adminshell/cmd/adminshell/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
