package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"resume-builder/internal/ai"
)

var promptCmd = &cobra.Command{
	Use:   "prompt [text]",
	Short: "Render the provider prompt for a request type",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPrompt,
}

var (
	promptType    string
	promptContext string
)

func init() {
	promptCmd.Flags().StringVarP(&promptType, "type", "t", "general", "Request type (summary, bullets, ats_score, ...)")
	promptCmd.Flags().StringVarP(&promptContext, "context", "c", "", "Path to a JSON context object")
	rootCmd.AddCommand(promptCmd)
}

func loadContext(path string) (ai.PromptContext, error) {
	var pc ai.PromptContext
	if path == "" {
		return pc, nil
	}
	raw, err := readInput(path)
	if err != nil {
		return pc, fmt.Errorf("read context: %w", err)
	}
	if err := json.Unmarshal(raw, &pc); err != nil {
		return pc, fmt.Errorf("context must be a JSON object: %w", err)
	}
	return pc, nil
}

func runPrompt(cmd *cobra.Command, args []string) error {
	pc, err := loadContext(promptContext)
	if err != nil {
		return err
	}
	t := ai.ParseRequestType(promptType)
	fmt.Fprintln(cmd.OutOrStdout(), ai.BuildPrompt(t, strings.Join(args, " "), pc))
	return nil
}
