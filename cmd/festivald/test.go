package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hinto-janai/festival-sub001/internal/config"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Verify festivald configuration",
	Long:  "Check the festivald configuration file for completeness and consistency",
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.Test(); err != nil {
			fmt.Printf("%v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(testCmd)
}
