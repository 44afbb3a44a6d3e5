package main

import (
	"fmt"
	"os"

	"github.com/nyxforge/supportgen/internal/config"
	"github.com/nyxforge/supportgen/pkg/mesh"
	"github.com/nyxforge/supportgen/pkg/stl"
	"github.com/nyxforge/supportgen/pkg/support"
	"github.com/spf13/cobra"
)

var (
	overhangAngleLimit float64
	overhangConfig     string
)

var overhangCmd = &cobra.Command{
	Use:   "overhang [file]",
	Short: "Report which faces, edges, and vertices need support",
	Long:  "Classify a model's overhanging surfaces at the given angle limit and report counts, without sampling, routing, or meshing a support structure.",
	Args:  cobra.ExactArgs(1),
	Run:   runOverhang,
}

func init() {
	rootCmd.AddCommand(overhangCmd)

	overhangCmd.Flags().Float64Var(&overhangAngleLimit, "angle-limit", 0, "Overhang angle limit in degrees (overrides config)")
	overhangCmd.Flags().StringVarP(&overhangConfig, "config", "c", "", "Path to a YAML configuration file")
}

func runOverhang(cmd *cobra.Command, args []string) {
	filename := args[0]

	cfg, err := config.Load(overhangConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cmd.Flags().Changed("angle-limit") {
		cfg.Support.AngleLimitDegrees = overhangAngleLimit
	}

	model, err := stl.Parse(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing STL file: %v\n", err)
		os.Exit(1)
	}

	m, err := mesh.FromModel(model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building mesh: %v\n", err)
		os.Exit(1)
	}

	params := cfg.Parameters()
	flags := support.Classify(m, params)

	fmt.Println("Overhang Classification")
	fmt.Println("========================")
	fmt.Printf("Angle limit: %.2f degrees\n\n", cfg.Support.AngleLimitDegrees)
	fmt.Printf("Faces needing support:    %d / %d\n", len(flags.Faces), m.FaceCount())
	fmt.Printf("Ridge edges needing support: %d\n", len(flags.Edges))
	fmt.Printf("Vertices needing support: %d\n", len(flags.Vertices))
}
