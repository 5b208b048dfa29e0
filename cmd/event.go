package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/frahmantamala/research-analytics/internal/core/events"
	"github.com/frahmantamala/research-analytics/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Domain event commands",
	Long:  `Inspect the in-process event bus: publish sample domain events through the audit subscriber.`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [event-type]",
	Short:     "Publish a sample domain event",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{events.EventTypeGrantStatusChanged, events.EventTypeTimeLogsBulkLogged},
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishSampleEvent(cmd.Context(), args[0])
	},
}

var sampleSubject string

func sampleEvent(eventType, subject string) (events.Event, error) {
	switch eventType {
	case events.EventTypeGrantStatusChanged:
		return events.NewGrantStatusChangedEvent(subject, "", "SUBMITTED", "AWARDED"), nil
	case events.EventTypeTimeLogsBulkLogged:
		return events.NewTimeLogsBulkCreatedEvent(1, []string{subject}, 7.5), nil
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
}

func publishSampleEvent(ctx context.Context, eventType string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	lg := logger.LoggerWrapper()

	event, err := sampleEvent(eventType, sampleSubject)
	if err != nil {
		return err
	}

	bus := events.NewEventBus(lg)
	bus.Subscribe(eventType, events.AuditLogHandler(lg.Info))

	if err := bus.PublishSync(ctx, event); err != nil {
		fmt.Fprintf(os.Stderr, "publish failed: %v\n", err)
		return err
	}
	lg.Info("sample event published", "event_type", eventType, "event_id", event.EventID())
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&sampleSubject, "subject", "sample", "grant or researcher id carried by the event")
	eventCmd.AddCommand(publishEventCmd)
	rootCmd.AddCommand(eventCmd)
}
