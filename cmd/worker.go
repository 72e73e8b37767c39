package cmd

import (
	"context"
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/studhue/apiserver/config"
	"github.com/studhue/apiserver/internal/mq"
)

// workerCmd represents the worker command.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume studhue activity events",
	Long: `Consumes post and follow activity events from the configured
message broker and logs them. Usage:

	studhue worker
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		bus, err := mq.NewBusFromConfig(cmd.Context(), cfg.Events)
		if err != nil {
			return err
		}
		if bus == nil {
			return errors.New("EVENTS_BACKEND is required for the worker")
		}
		defer func() {
			_ = bus.Close()
		}()

		handler := func(ctx context.Context, msg mq.Message) error {
			log.Printf("event id=%s payload=%s", msg.ID, msg.Data)
			return nil
		}

		errCh := make(chan error, 2)
		for _, channel := range []string{mq.ChannelPostEvents, mq.ChannelFollowEvents} {
			go func(name string) {
				errCh <- bus.Subscribe(cmd.Context(), name, handler)
			}(channel)
		}
		return <-errCh
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
