package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var preamble = `festivald ` + Version + `

festivald is a headless local music server: it builds a Collection from
your music directories and serves playback/search commands over its
in-process Kernel.

festivald comes with ABSOLUTELY NO WARRANTY. This is free software, and
you are welcome to redistribute it under certain conditions.`

var rootCmd = &cobra.Command{
	Use:     "festivald",
	Short:   "festivald music server",
	Long:    preamble,
	Version: Version,
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
}
