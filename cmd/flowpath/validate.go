package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ostryzhko/flowpath"
)

var validateCmd = &cobra.Command{
	Use:   "validate <snapshot.json>",
	Short: "Check a workflow snapshot for consistency",
	Long:  `Loads a node-link snapshot and reports the first violated structural rule, if any.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Workflow is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := flowpath.LoadJSON(data); err != nil {
		return err
	}
	return nil
}
