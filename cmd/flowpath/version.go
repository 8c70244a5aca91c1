package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ostryzhko/flowpath"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of flowpath",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("flowpath version %s\n", flowpath.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
