package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jask/safeflow/internal/llm"
	"github.com/jask/safeflow/internal/metrics"
	"github.com/jask/safeflow/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive assistant",
	Long: `Open a chat with the assistant in the terminal.

When metrics.addr is set, Prometheus metrics are served on that address for
as long as the chat is open.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, _ []string) error {
	e, err := loadFileLogging()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.openUsage(); err != nil {
		e.log.Warn().Err(err).Msg("usage ledger unavailable")
	}
	conv, err := e.conversation()
	if err != nil {
		return explainSetupError(err, e.cfg.LLM.APIKeyEnv)
	}
	e.log.Info().Str("conversation_id", conv.ID()).Str("profile", conv.Profile().Name).Msg("chat started")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var usage tui.UsageSummarizer
	if e.usage != nil {
		usage = e.usage
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		p := tea.NewProgram(tui.New(gctx, conv, usage), tea.WithAltScreen(), tea.WithContext(gctx))
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && gctx.Err() != nil {
			return nil
		}
		return err
	})
	if addr := e.cfg.Metrics.Addr; addr != "" {
		g.Go(func() error {
			e.log.Info().Str("addr", addr).Msg("serving metrics")
			return metrics.Serve(gctx, addr)
		})
	}
	return g.Wait()
}

// explainSetupError turns a missing credential into an actionable message.
func explainSetupError(err error, envName string) error {
	if errors.Is(err, llm.ErrNoAPIKey) {
		return errors.Errorf("no API key: set %s or run `safeflow key set`", envName)
	}
	return err
}
