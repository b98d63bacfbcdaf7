// Package cmd implements the iqdb command-line surface: `iqdb http` runs
// the HTTP server; unknown commands print help and exit cleanly.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "iqdb",
	Short: "A content-based reverse image search engine",
	Long: `iqdb reduces images to perceptual signatures via Haar wavelet
decomposition and serves similarity queries over an inverted bucket index
backed by a persistent SQLite store.`,
	// A bare or unrecognized invocation prints help and exits 0, rather
	// than cobra's default "unknown command" error.
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command, exiting non-zero on any command error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found.
	_ = godotenv.Load()
}
