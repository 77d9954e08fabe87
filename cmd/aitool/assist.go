package main

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"resume-builder/internal/ai"
	"resume-builder/internal/bootstrap"
	"resume-builder/internal/shared/config"
)

var assistCmd = &cobra.Command{
	Use:   "assist [text]",
	Short: "Run a live assist call against the configured providers",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAssist,
}

var (
	assistType    string
	assistContext string
	assistTimeout time.Duration
)

func init() {
	assistCmd.Flags().StringVarP(&assistType, "type", "t", "general", "Request type")
	assistCmd.Flags().StringVarP(&assistContext, "context", "c", "", "Path to a JSON context object")
	assistCmd.Flags().DurationVar(&assistTimeout, "timeout", 90*time.Second, "Overall call timeout")
	rootCmd.AddCommand(assistCmd)
}

func newAIService(ctx context.Context) (*ai.Service, func(), error) {
	cfg := config.Load()
	providers, closers, err := bootstrap.BuildProviders(ctx, cfg.AI)
	cleanup := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return ai.NewService(providers, time.Duration(cfg.AI.TimeoutSeconds)*time.Second), cleanup, nil
}

func runAssist(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), assistTimeout)
	defer cancel()

	pc, err := loadContext(assistContext)
	if err != nil {
		return err
	}
	svc, cleanup, err := newAIService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	env, err := svc.Assist(ctx, ai.Request{
		Prompt:  strings.Join(args, " "),
		Type:    ai.ParseRequestType(assistType),
		Context: pc,
	})
	if werr := writeJSON(cmd.OutOrStdout(), env); werr != nil {
		return werr
	}
	return err
}
