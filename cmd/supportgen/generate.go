package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/nyxforge/supportgen/internal/config"
	"github.com/nyxforge/supportgen/pkg/analysis"
	"github.com/nyxforge/supportgen/pkg/mesh"
	"github.com/nyxforge/supportgen/pkg/stl"
	"github.com/nyxforge/supportgen/pkg/support"
	"github.com/nyxforge/supportgen/pkg/watcher"
	"github.com/spf13/cobra"
)

var (
	genOutput      string
	genConfig      string
	genAngleLimit  float64
	genGridDensity int
	genDiameterCoeff float64
	genWatch       bool
	genASCII       bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Generate 3D-printing support structures for an STL model",
	Long: `Classify a model's overhanging surfaces, sample support points across
them, route a tree of struts down to the build plate or back onto the
model, and mesh the result as triangles appended to the input model.`,
	Args: cobra.ExactArgs(1),
	Run:  runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file (default: <input>.supported.stl)")
	generateCmd.Flags().StringVarP(&genConfig, "config", "c", "", "Path to a YAML configuration file")
	generateCmd.Flags().Float64Var(&genAngleLimit, "angle-limit", 0, "Overhang angle limit in degrees (overrides config)")
	generateCmd.Flags().IntVar(&genGridDensity, "grid-density", 0, "Sample points per overhanging triangle side (overrides config)")
	generateCmd.Flags().Float64Var(&genDiameterCoeff, "diameter-coefficient", 0, "Strut radius scaling factor (overrides config)")
	generateCmd.Flags().BoolVar(&genWatch, "watch", false, "Regenerate whenever the input file changes")
	generateCmd.Flags().BoolVar(&genASCII, "ascii", false, "Write ASCII STL instead of binary (overrides config)")
}

func runGenerate(cmd *cobra.Command, args []string) {
	filename := args[0]
	output := genOutput
	if output == "" {
		output = defaultOutputPath(filename)
	}

	cfg, err := config.Load(genConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	applyGenerateFlags(cmd, cfg)

	if err := generateOnce(filename, output, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !genWatch {
		return
	}

	fw, err := watcher.NewFileWatcher(cfg.Watch.Debounce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting watcher: %v\n", err)
		os.Exit(1)
	}
	defer fw.Close()

	// Debounced callbacks fire on timer goroutines; the lock keeps
	// regenerations from overlapping.
	var regenMu sync.Mutex
	if err := fw.Watch([]string{filename}, func(changed string) {
		regenMu.Lock()
		defer regenMu.Unlock()
		fmt.Printf("\n%s changed, regenerating...\n", changed)
		if err := generateOnce(filename, output, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error watching %s: %v\n", filename, err)
		os.Exit(1)
	}

	fw.Start()
	fmt.Printf("Watching %s for changes. Press Ctrl+C to stop.\n", filename)
	select {}
}

// applyGenerateFlags overrides cfg with any flag the user actually set,
// leaving config-file and default values alone otherwise.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("angle-limit") {
		cfg.Support.AngleLimitDegrees = genAngleLimit
	}
	if cmd.Flags().Changed("grid-density") {
		cfg.Support.GridDensity = genGridDensity
	}
	if cmd.Flags().Changed("diameter-coefficient") {
		cfg.Support.DiameterCoefficient = genDiameterCoeff
	}
	if cmd.Flags().Changed("ascii") {
		cfg.Output.Binary = !genASCII
	}
}

func generateOnce(inputPath, outputPath string, cfg *config.Config) error {
	started := time.Now()

	model, err := stl.Parse(inputPath)
	if err != nil {
		return fmt.Errorf("parsing STL file: %w", err)
	}

	m, err := mesh.FromModel(model)
	if err != nil {
		return fmt.Errorf("building mesh: %w", err)
	}

	params := cfg.Parameters()
	result, err := support.Transform(m, params, reportProgress)
	if err != nil {
		return fmt.Errorf("generating supports: %w", err)
	}

	combined := stl.Combine(model, result.Model)
	if err := combined.Write(outputPath, cfg.Output.Binary); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}

	summary := analysis.SummarizeSupport(result.Flags, result.Points, result.Tree)
	fmt.Println()
	fmt.Print(analysis.FormatSupportSummary(summary))
	fmt.Printf("Support triangles: %d\n", result.Model.TriangleCount())
	fmt.Printf("Wrote %s in %s\n", outputPath, time.Since(started).Round(time.Millisecond))
	return nil
}

func reportProgress(stage support.Stage, percent int) {
	fmt.Printf("\r%-10s %3d%%", stage, percent)
	if percent == 100 {
		fmt.Println()
	}
}

func defaultOutputPath(inputPath string) string {
	ext := ".stl"
	base := inputPath
	if len(inputPath) > len(ext) && inputPath[len(inputPath)-len(ext):] == ext {
		base = inputPath[:len(inputPath)-len(ext)]
	}
	return base + ".supported.stl"
}
