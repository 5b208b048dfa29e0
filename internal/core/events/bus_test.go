package events_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/frahmantamala/research-analytics/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("delivers asynchronously to every subscriber and Wait drains them", func() {
		var calls atomic.Int32
		for i := 0; i < 3; i++ {
			bus.Subscribe(events.EventTypeGrantStatusChanged, func(context.Context, events.Event) error {
				calls.Add(1)
				return nil
			})
		}

		Expect(bus.Publish(context.Background(), events.NewGrantStatusChangedEvent("g1", "i1", "SUBMITTED", "AWARDED"))).To(Succeed())
		bus.Wait()
		Expect(calls.Load()).To(BeEquivalentTo(3))
	})

	It("keeps handlers running after the publishing context is cancelled", func() {
		var handlerErr atomic.Value
		bus.Subscribe(events.EventTypeTimeLogsBulkLogged, func(ctx context.Context, _ events.Event) error {
			handlerErr.Store(fmt.Sprint(ctx.Err()))
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(bus.Publish(ctx, events.NewTimeLogsBulkCreatedEvent(2, []string{"r1"}, 3))).To(Succeed())
		bus.Wait()
		Expect(handlerErr.Load()).To(Equal("<nil>"))
	})

	It("ignores events nobody listens to", func() {
		Expect(bus.Publish(context.Background(), events.NewTimeLogsBulkCreatedEvent(1, nil, 1))).To(Succeed())
		Expect(bus.PublishSync(context.Background(), events.NewTimeLogsBulkCreatedEvent(1, nil, 1))).To(Succeed())
	})

	It("surfaces a failing handler from PublishSync", func() {
		bus.Subscribe(events.EventTypeGrantStatusChanged, func(context.Context, events.Event) error {
			return errors.New("audit store down")
		})
		err := bus.PublishSync(context.Background(), events.NewGrantStatusChangedEvent("g1", "", "DRAFT", "SUBMITTED"))
		Expect(err).To(MatchError(ContainSubstring("audit store down")))
	})
})

var _ = Describe("domain events", func() {
	It("carries the status transition in the payload", func() {
		evt := events.NewGrantStatusChangedEvent("g1", "i1", "SUBMITTED", "REJECTED")
		Expect(evt.EventType()).To(Equal(events.EventTypeGrantStatusChanged))
		Expect(evt.EventID()).NotTo(BeEmpty())
		Expect(evt.Payload()).To(HaveKeyWithValue("to", "REJECTED"))
	})

	It("writes events through the audit handler", func() {
		var msgs []string
		handler := events.AuditLogHandler(func(msg string, args ...any) {
			msgs = append(msgs, fmt.Sprint(append([]any{msg}, args...)...))
		})
		Expect(handler(context.Background(), events.NewTimeLogsBulkCreatedEvent(4, []string{"r1", "r2"}, 10))).To(Succeed())
		Expect(msgs).To(HaveLen(1))
		Expect(msgs[0]).To(ContainSubstring(events.EventTypeTimeLogsBulkLogged))
	})
})
