package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/notify"
)

// newSweepCmd runs one completion and reminder pass, for deployments that drive
// maintenance from an external scheduler instead of the serve loop.
func newSweepCmd(rt *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Complete past bookings and send due reminders once",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.load(); err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := rt.logger

			store, err := openStore(ctx, rt.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			sink, closeSink := newSink(rt.cfg, logger)
			defer closeSink()
			dispatcher := notify.NewDispatcher(sink, notify.DispatcherOptions{QueueSize: rt.cfg.NotifyQueueSize, Logger: logger})

			dispatchCtx, stopDispatch := context.WithCancel(ctx)
			dispatched := make(chan struct{})
			go func() {
				dispatcher.Run(dispatchCtx)
				close(dispatched)
			}()

			svc := newServices(store, nil, dispatcher, rt.cfg, systemClockAndIDs(), logger)
			runner := application.NewMaintenanceRunner(svc.bookings, 0, rt.cfg.ReminderLead, logger)
			completed, reminded, err := runner.RunOnce(ctx)

			stopDispatch()
			<-dispatched

			if err != nil {
				return err
			}
			logger.InfoContext(ctx, "sweep finished", "completed", completed, "reminded", reminded)
			return nil
		},
	}
}
