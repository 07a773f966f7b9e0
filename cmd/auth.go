package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/calagent/internal/auth"
	"github.com/teemow/calagent/internal/config"
	"github.com/teemow/calagent/internal/logging"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Run the interactive Google authorization flow",
		Long: `Run a fresh authorization-code grant and replace the stored credential.

Normally authorization happens automatically on first use; this command
exists to re-authorize explicitly, for example after revoking access.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := logging.Setup(os.Stderr, cfg.LogLevel)
			slog.SetDefault(logger)

			conf := auth.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.RedirectURI)
			addr, err := cfg.CallbackAddr()
			if err != nil {
				return err
			}

			flow := auth.NewFlow(conf, addr, cmd.OutOrStdout(), logger)
			cred, err := flow.Run(cmd.Context())
			if err != nil {
				return err
			}

			store := auth.NewFileStore(cfg.CredentialFile)
			if err := store.Save(cred); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Authorization complete. Credential saved to %s\n", store.Path())
			return nil
		},
	}
}
