package main

import (
	"github.com/spf13/cobra"

	"resume-builder/internal/ai"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Normalize a raw model reply into the response envelope",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		raw, err := readInput(path)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), ai.Normalize(string(raw)))
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}
