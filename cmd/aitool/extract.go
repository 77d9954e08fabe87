package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"resume-builder/internal/assistant"
	"resume-builder/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract text from a PDF, DOCX or text CV and optionally parse it",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var (
	extractParse   bool
	extractTimeout time.Duration
)

func init() {
	extractCmd.Flags().BoolVar(&extractParse, "parse", false, "Run structured CV extraction with retries")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 3*time.Minute, "Overall timeout for parsing")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	data, err := readInput(args[0])
	if err != nil {
		return err
	}
	mime := mimetype.Detect(data)
	text, err := extract.ExtractTextFromBytes(cmd.Context(), data, mime.String(), filepath.Base(args[0]))
	if err != nil {
		return fmt.Errorf("extract %s (%s): %w", args[0], mime.String(), err)
	}
	if !extractParse {
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), extractTimeout)
	defer cancel()
	svc, cleanup, err := newAIService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	analyzer := assistant.NewCVAnalyzer(assistant.NewFacade(svc))
	analyzer.OnAttempt = func(st assistant.AttemptStatus) {
		fmt.Fprintf(cmd.ErrOrStderr(), "attempt %d: %s %s\n", st.Attempt, st.Status, st.Error)
	}
	result, err := analyzer.Analyze(ctx, text)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result.Data)
}
