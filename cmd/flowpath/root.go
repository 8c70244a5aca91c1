package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flowpath",
	Short: "Flowpath is a decision workflow engine",
	Long:  `Flowpath stores decision workflows as validated directed graphs and resolves the execution path from start to end.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "flowpath.yaml", "Path to the configuration file")
}
