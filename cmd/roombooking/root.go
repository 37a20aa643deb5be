package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/room-booking/internal/config"
)

// cli holds what every subcommand needs once flags and environment are read.
type cli struct {
	envFile string
	cfg     config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	rt := &cli{}

	root := &cobra.Command{
		Use:           "roombooking",
		Short:         "Room booking service with conflict checked reservations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rt.envFile, "env-file", ".env", "optional dotenv file loaded before reading ROOMBOOKING_* variables")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newServeCmd(rt))
	root.AddCommand(newMigrateCmd(rt))
	root.AddCommand(newSweepCmd(rt))

	return root
}

// load reads the dotenv file and the environment and builds the logger.
func (rt *cli) load() error {
	if err := config.LoadDotEnv(rt.envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	rt.cfg = cfg
	rt.logger = newLogger(cfg, os.Stdout)
	slog.SetDefault(rt.logger)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "roombooking %s (commit=%s, built=%s)\n", Version, CommitSHA, BuildDate)
		},
	}
}
