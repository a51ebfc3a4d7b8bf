package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hinto-janai/festival-sub001/internal/festival"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run festivald",
	Long:  "Run the festivald music server",
	Run: func(cmd *cobra.Command, args []string) {
		if err := festival.Run(Version); err != nil {
			fmt.Printf("festivald cannot be run: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
