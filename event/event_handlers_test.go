package event_test

import (
	"shopfloor/event"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func TestInvokeHandlers(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should invoke all registered event handlers", func(t *testing.T) {
		defer func() { event.EventHandlers = nil }()
		event.EventHandlers = append(event.EventHandlers, func(e *event.EventRecord) *event.EventHandleResult {
			return nil
		})
		event.EventHandlers = append(event.EventHandlers, func(e *event.EventRecord) *event.EventHandleResult {
			return &event.EventHandleResult{Success: true, Message: "success", HandlerIdentifier: "all-success-handler"}
		})
		event.EventHandlers = append(event.EventHandlers, func(e *event.EventRecord) *event.EventHandleResult {
			return &event.EventHandleResult{Success: false, Message: "failure", HandlerIdentifier: "all-failure-handler"}
		})

		ev := event.EventRecord{
			Event: event.Event{
				SourceType:        event.SourceTypeProductionRecord,
				SourceId:          1234,
				SourceDesc:        "record1234",
				EventCategory:     event.EventCategoryPropertyUpdated,
				UpdatedProperties: event.StatusChange("PAUSED", "IN_PROGRESS"),
				CreatorId:         333,
			},
			Timestamp: time.Date(2021, 1, 1, 12, 12, 12, 0, time.UTC),
		}

		ret := event.InvokeHandlersFunc(&ev)
		Expect(ret).To(Equal([]event.EventHandleResult{
			{Success: true, Message: "success", HandlerIdentifier: "all-success-handler"},
			{Success: false, Message: "failure", HandlerIdentifier: "all-failure-handler"},
		}))
	})

	t.Run("should not mark events synced when a handler fails", func(t *testing.T) {
		defer func() {
			event.InvokeHandlersFunc = testInvokeHandlers
			event.MarkSyncedFunc = testMarkSynced
		}()
		var marked []*event.EventRecord
		event.MarkSyncedFunc = func(record *event.EventRecord) error {
			marked = append(marked, record)
			return nil
		}
		event.InvokeHandlersFunc = func(record *event.EventRecord) []event.EventHandleResult {
			return []event.EventHandleResult{{Success: record.SourceId == 1}}
		}

		first, second := &event.EventRecord{Event: event.Event{SourceId: 1}}, &event.EventRecord{Event: event.Event{SourceId: 2}}
		event.Dispatch([]*event.EventRecord{first, second})
		Expect(marked).To(Equal([]*event.EventRecord{first}))
	})
}

var (
	testInvokeHandlers = event.InvokeHandlersFunc
	testMarkSynced     = event.MarkSyncedFunc
)
