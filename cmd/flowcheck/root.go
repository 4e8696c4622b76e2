package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flowcheck",
	Short: "Flowcheck validates the parameter wiring of client flows",
	Long: `Flowcheck resolves every parameter reference of a flow's screens against the
flow's client/server schemas and each screen's own declared schema, and
reports the first structural or safety violation.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
}
