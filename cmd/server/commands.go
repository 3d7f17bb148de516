package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diewo77/kinz/internal/db"
	"github.com/diewo77/kinz/internal/logger"
	"github.com/diewo77/kinz/internal/syncer"
)

var (
	errRemoteDisabled    = errors.New("remote mirror is disabled (set REMOTE_ENABLED=1)")
	errRemoteUnreachable = errors.New("remote mirror is unreachable")
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one migrate-or-adopt pass against the remote mirror and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !cfg.Remote.Enabled {
			return errRemoteDisabled
		}
		rt, err := openRuntime(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer rt.Close()
		if rt.syncer == nil {
			return errRemoteUnreachable
		}
		outcomes := rt.syncer.Sync(cmd.Context())
		logOutcomes(outcomes)
		for _, o := range outcomes {
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-8s %d\n", o.Table, o.Action, o.Count)
		}
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the remote schema migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !cfg.Remote.Enabled {
			return errRemoteDisabled
		}
		return db.MigrateRemote(cfg.Remote.URL())
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Rebuild every account balance from the ledger",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := openRuntime(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer rt.Close()
		accounts, err := rt.store.RecalculateAccountBalances(cmd.Context())
		if err != nil {
			return err
		}
		for _, a := range accounts {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.2f\n", a.Name, a.Balance)
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe all local and remote data and restore the defaults",
	RunE: func(cmd *cobra.Command, _ []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return errors.New("refusing to reset without --yes")
		}
		rt, err := openRuntime(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer rt.Close()
		if rt.syncer != nil {
			return rt.syncer.FactoryReset(cmd.Context())
		}
		return rt.store.FactoryReset(cmd.Context())
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the default users, settings and contract options",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := openRuntime(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer rt.Close()
		ctx := cmd.Context()
		if _, err := rt.store.UpdateSettings(ctx, map[string]any{}); err != nil {
			return err
		}
		if err := rt.store.UpdateContractOptions(ctx, rt.store.ContractOptions()); err != nil {
			return err
		}
		log := logger.WithComponent("seed")
		log.Info().Int("users", len(rt.store.Users())).Msg("defaults written")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "confirm the irreversible wipe")
	rootCmd.AddCommand(syncCmd, migrateCmd, reconcileCmd, resetCmd, seedCmd)
}

func logOutcomes(outcomes []syncer.Outcome) {
	log := logger.WithComponent("syncer")
	for _, o := range outcomes {
		ev := log.Info()
		if o.Err != nil {
			ev = log.Warn().Err(o.Err)
		}
		ev.Str("table", o.Table).Str("action", string(o.Action)).Int("count", o.Count).Msg("sync")
	}
}
