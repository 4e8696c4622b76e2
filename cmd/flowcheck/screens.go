package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mirelo/flowcheck/internal/loader"
)

var screensCmd = &cobra.Command{
	Use:   "screens <dir>",
	Short: "List the screen definitions in a library directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		screens, err := loader.LoadScreens(args[0])
		if err != nil {
			return err
		}
		for _, screen := range screens {
			fmt.Printf("%s\t%s\n", screen.Slug, screen.UID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(screensCmd)
}
