package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ostryzhko/flowpath"
	"github.com/ostryzhko/flowpath/internal/presentation/graph"
	"github.com/ostryzhko/flowpath/pkg/domain"
)

var graphCmd = &cobra.Command{
	Use:   "graph <snapshot.json>",
	Short: "Export the workflow graph visualization",
	Long:  `Loads a node-link snapshot and outputs a Mermaid diagram (graph TD) of the workflow, highlighting the resolved path when one exists.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runGraph(args[0]); err != nil {
			fmt.Printf("Graph export failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

func runGraph(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	eng, err := flowpath.LoadJSON(data)
	if err != nil {
		return err
	}
	nodes, err := eng.Nodes()
	if err != nil {
		return err
	}

	// An unresolvable path is not an export failure; the overlay is just
	// omitted.
	var overlay *graph.Overlay
	ids, err := eng.Path()
	switch {
	case err == nil:
		overlay = &graph.Overlay{PathNodes: ids}
	case errors.Is(err, domain.ErrNoPath), errors.Is(err, domain.ErrLoop):
	default:
		return err
	}

	fmt.Print(graph.GenerateMermaid(nodes, eng.Edges(), overlay))
	return nil
}
