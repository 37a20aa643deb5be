package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(rt *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.load(); err != nil {
				return err
			}
			ctx := cmd.Context()

			store, err := openStore(ctx, rt.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			version, err := store.Migrate(ctx)
			if err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}
			rt.logger.InfoContext(ctx, "schema up to date", "driver", rt.cfg.StoreDriver, "version", version)
			return nil
		},
	}
}
