// Package main writes a static export of the portfolio: the rendered
// page, each section fragment, the content as JSON and a precomputed
// background snapshot.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var opts exportOptions

var rootCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a static export of the portfolio",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runExport(cmd.OutOrStdout(), opts)
	},
}

func init() {
	rootCmd.Flags().StringVar(&opts.OutDir, "out", "dist", "Output directory")
	rootCmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "Background seed")
	rootCmd.Flags().Float64Var(&opts.Width, "width", 1440, "Background viewport width")
	rootCmd.Flags().Float64Var(&opts.Height, "height", 900, "Background viewport height")
	rootCmd.Flags().IntVar(&opts.Frames, "frames", 120, "Frames to simulate before the snapshot")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
