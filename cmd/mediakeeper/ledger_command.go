package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mediakeeper/internal/ledger"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the processed NFO ledger",
	}

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sidecars that were already enriched",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			led, err := ledger.Open(cfg.Paths.LedgerFile)
			if err != nil {
				if errors.Is(err, ledger.ErrLocked) {
					return fmt.Errorf("ledger is in use by a running enrich pass: %w", err)
				}
				return fmt.Errorf("open ledger: %w", err)
			}
			defer led.Close()

			out := cmd.OutOrStdout()
			entries := led.Entries()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No processed sidecars recorded in %s\n", led.Path())
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintln(out, entry)
			}
			fmt.Fprintf(out, "%d processed sidecars\n", len(entries))
			return nil
		},
	})

	return ledgerCmd
}
