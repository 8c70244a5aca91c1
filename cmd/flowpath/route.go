package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/ostryzhko/flowpath"
	"github.com/ostryzhko/flowpath/pkg/domain"
)

var routeCmd = &cobra.Command{
	Use:   "route <snapshot.json>",
	Short: "Resolve and print the execution path of a workflow",
	Long:  `Loads a node-link snapshot, resolves the path from start to end and prints it with each node colored by kind.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRoute(args[0]); err != nil {
			fmt.Printf("Route failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(routeCmd)
}

func runRoute(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	eng, err := flowpath.LoadJSON(data)
	if err != nil {
		return err
	}
	if _, ok := eng.StartNodeID(); !ok {
		return errors.New("No start node found")
	}
	nodes, err := eng.PathNodes()
	if err != nil {
		return err
	}
	fmt.Println(renderRoute(nodes, termenv.ColorProfile()))
	return nil
}

// renderRoute colors each node description by its display color, matching
// the palette used for node kinds (start green, end yellow, message blue,
// condition red).
func renderRoute(nodes []domain.Node, profile termenv.Profile) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		styled := termenv.String(n.String()).Foreground(profile.Color(ansiColor(n.Color())))
		parts = append(parts, styled.String())
	}
	return "The path to end:\n" + strings.Join(parts, " -> ")
}

func ansiColor(name string) string {
	switch name {
	case "green":
		return "2"
	case "yellow":
		return "3"
	case "blue":
		return "4"
	case "red":
		return "1"
	default:
		return "7"
	}
}
