package main

import (
	"fmt"
	"os"

	"github.com/nyxforge/supportgen/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "supportgen",
	Short: "Inspect STL models and generate 3D-printing support structures",
	Long: `supportgen is a command-line tool for analyzing STL (Stereolithography) files
and generating tree-style support structures for overhanging geometry.
It supports both ASCII and binary STL formats, and provides both plain
geometric inspection (info, edges, triangles, measure) and the
classify/sample/route/mesh support pipeline (overhang, generate).`,
	Version: version.GetFullVersion(),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
