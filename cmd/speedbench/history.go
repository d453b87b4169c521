package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"speedbench/internal/config"
	"speedbench/internal/db"
)

// initHistoryCmd initializes the history command and adds it to the root command.
func initHistoryCmd(rootCmd *cobra.Command) {
	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List previously recorded sweeps",
		Long: `Lists the sweeps stored in the history database configured by
history.type and history.dsn, newest first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Current()
			if err != nil {
				return err
			}
			if cfg.HistoryType == "" {
				return fmt.Errorf("no history backend configured (set history.type)")
			}

			store, err := newHistoryStore(db.StoreConfig{Type: cfg.HistoryType, ConnectionString: cfg.HistoryDSN})
			if err != nil {
				return fmt.Errorf("failed to open history store: %w", err)
			}
			defer store.Close()

			sweeps, err := store.ListSweeps(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list sweeps: %w", err)
			}
			printHistory(cmd.OutOrStdout(), sweeps)
			return nil
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of sweeps to show")
	rootCmd.AddCommand(historyCmd)
}
