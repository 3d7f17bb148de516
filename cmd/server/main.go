package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/diewo77/kinz/auth"
	"github.com/diewo77/kinz/internal/config"
	"github.com/diewo77/kinz/internal/logger"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "kinz",
	Short: "Workshop state, sync and ledger server",
	Long: `kinz keeps the workshop's customers, purchases, inventory and ledger in a
local cache, mirrors them to a remote postgres database when one is
configured, and serves them as a JSON API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load environment variables from .env file
		_ = godotenv.Load()
		cfg = config.Load()
		if err := logger.Setup(cfg.Log); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		auth.SetSecret(cfg.Server.SessionSecret)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
