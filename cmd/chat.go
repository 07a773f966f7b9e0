package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/calagent/internal/agent"
	"github.com/teemow/calagent/internal/auth"
	"github.com/teemow/calagent/internal/calendar"
	"github.com/teemow/calagent/internal/config"
	"github.com/teemow/calagent/internal/logging"
	"github.com/teemow/calagent/internal/tools"
	"github.com/teemow/calagent/internal/tools/calendar_tools"
)

// queryRunner is the conversational surface the CLI drives.
// Implemented by *agent.Loop.
type queryRunner interface {
	Run(ctx context.Context, userMessage string) (string, error)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.Setup(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	loop, err := newSession(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		return runOnce(ctx, loop, strings.Join(args, " "), cmd.OutOrStdout())
	}
	return runREPL(ctx, loop, cmd.InOrStdin(), cmd.OutOrStdout())
}

// newSession authorizes against the calendar once and assembles the
// conversation loop over the registered tools.
func newSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*agent.Loop, error) {
	conf := auth.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.RedirectURI)
	addr, err := cfg.CallbackAddr()
	if err != nil {
		return nil, err
	}

	store := auth.NewFileStore(cfg.CredentialFile)
	flow := auth.NewFlow(conf, addr, os.Stdout, logger)
	manager := auth.NewManager(conf, store, flow, logger)

	handle, err := manager.Obtain(ctx)
	if err != nil {
		return nil, err
	}

	client, err := calendar.NewClient(ctx, handle.HTTPClient(ctx), logger)
	if err != nil {
		return nil, err
	}

	registry := tools.NewRegistry(logger)
	if err := calendar_tools.Register(registry, client); err != nil {
		return nil, err
	}

	sender := agent.NewAnthropicSender(cfg.AnthropicAPIKey)
	return agent.NewLoop(sender, registry, agent.Config{
		Model:        cfg.Model,
		SystemPrompt: agent.SystemPrompt(time.Now()),
	}, logger), nil
}

// runOnce answers a single query; a fatal error propagates to a non-zero
// process exit.
func runOnce(ctx context.Context, loop queryRunner, query string, out io.Writer) error {
	answer, err := loop.Run(ctx, query)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, answer)
	return nil
}

// runREPL reads free-text lines until a quit sentinel or EOF. A failed turn
// prints its error and keeps prompting; only input errors end the loop.
func runREPL(ctx context.Context, loop queryRunner, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "calagent: ask about your calendar. Type 'quit' or 'exit' to leave.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		answer, err := loop.Run(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, answer)
	}
	return scanner.Err()
}
