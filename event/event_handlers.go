package event

import (
	"context"
	"shopfloor/persistence"

	"github.com/sirupsen/logrus"
)

/*
return nil if not support
*/
type EventHandler func(e *EventRecord) *EventHandleResult

type EventHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

var EventHandlers []EventHandler

var (
	InvokeHandlersFunc = invokeHandlers
	MarkSyncedFunc     = markSynced
)

func invokeHandlers(record *EventRecord) []EventHandleResult {
	results := []EventHandleResult{}
	for _, handler := range EventHandlers {
		logrus.Debug("pre handle event ", record.Event)
		r := handler(record)

		if r == nil {
			continue
		}

		results = append(results, *r)

		if r.Success {
			logrus.Info("post handle event. ", r)
		} else {
			logrus.Error("post handler error. ", r)
		}
	}
	return results
}

// Dispatch hands committed events to the handlers. Handler failures are logged and leave the event unsynced;
// they never undo the change the event describes.
func Dispatch(records []*EventRecord) {
	for _, record := range records {
		failed := false
		for _, r := range InvokeHandlersFunc(record) {
			if !r.Success {
				failed = true
			}
		}
		if failed {
			continue
		}
		if err := MarkSyncedFunc(record); err != nil {
			logrus.Warnf("mark event %d synced: %v", record.ID, err)
		}
	}
}

func markSynced(record *EventRecord) error {
	if persistence.ActiveDataSourceManager == nil {
		return nil
	}
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	if err := db.Model(&EventRecord{}).Where("id = ?", record.ID).Update("synced", true).Error; err != nil {
		return err
	}
	record.Synced = true
	return nil
}
