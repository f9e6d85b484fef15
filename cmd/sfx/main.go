package main

import (
	"os"

	"github.com/lixenwraith/sfx/core"
)

func main() {
	// Panic recovery: restores a registered terminal before printing the trace
	defer func() {
		core.HandleCrash(recover())
	}()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
