package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/tickbox/internal/browser"
	"github.com/xkilldash9x/tickbox/internal/challenge"
	"github.com/xkilldash9x/tickbox/internal/config"
	"github.com/xkilldash9x/tickbox/internal/humanoid"
	"github.com/xkilldash9x/tickbox/internal/observability"
)

func newSolveCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "solve <url>",
		Short: "Open the URL and resolve its verification checkbox",
		Long: `Opens the target page in a browser, emulates human browsing, clicks the
verification checkbox when its frame appears, and waits for the widget's
verdict. Exits 0 only when the challenge resolves; any other outcome
(not engaged, escalated, timed out, aborted) exits non-zero with the
outcome in the logs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Get()
			logger := observability.GetLogger()
			targetURL := args[0]

			manager := browser.NewManager(ctx, logger, cfg.Browser)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				_ = manager.Shutdown(shutdownCtx)
			}()

			session, err := manager.NewSession(ctx, targetURL)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", targetURL, err)
			}
			defer session.Close(context.Background())

			emulator := humanoid.New(cfg.Browser.Humanoid, logger, session)
			resolver := challenge.NewResolver(
				session,
				challenge.NewHumanoidMotion(emulator),
				challenge.NewClock(),
				cfg.Challenge,
				logger,
			)

			outcome := resolver.Resolve(ctx, timeout)
			logger.Info("Solve finished",
				zap.String("url", targetURL),
				zap.String("outcome", outcome.String()),
			)

			if !outcome.Resolved() {
				return fmt.Errorf("challenge not resolved: %s", outcome)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "total budget for the resolution")
	return cmd
}
