package event_test

import (
	"context"
	"errors"
	"shopfloor/event"
	"shopfloor/testinfra"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func TestCreateEvent(t *testing.T) {
	RegisterTestingT(t)
	now := time.Date(2021, 1, 1, 12, 12, 12, 0, time.UTC)

	t.Run("should return error when failed to persist event", func(t *testing.T) {
		defer func() { event.EventPersistCreateFunc = defaultPersistCreate }()
		testErr := errors.New("test error")
		event.EventPersistCreateFunc = func(record *event.EventRecord, tx *gorm.DB) error {
			return testErr
		}
		ret, err := event.CreateEvent(event.SourceTypeProductionRecord, 1234, "record1234", event.EventCategoryPropertyUpdated,
			event.StatusChange("IN_PROGRESS", "PAUSED"), nil, 333, now, &gorm.DB{Value: 10000})
		Expect(ret).To(BeNil())
		Expect(err).To(Equal(testErr))
	})

	t.Run("should be able to create events on the given transaction", func(t *testing.T) {
		defer func() { event.EventPersistCreateFunc = defaultPersistCreate }()
		var ev event.EventRecord
		var db *gorm.DB
		event.EventPersistCreateFunc = func(record *event.EventRecord, tx *gorm.DB) error {
			ev = *record
			db = tx
			return nil
		}

		tx := &gorm.DB{Value: 10000}
		ret, err := event.CreateEvent(event.SourceTypeProductionRecord, 1234, "record1234", event.EventCategoryPropertyUpdated,
			event.StatusChange("IN_PROGRESS", "PAUSED"),
			event.UpdatedRelations{{PropertyName: "Group", TargetType: event.SourceTypeProductionGroup, OldTargetId: "0", NewTargetId: "9"}},
			333, now, tx)
		Expect(err).To(BeNil())
		Expect(ret.ID).ToNot(BeZero())

		Expect(*ret).To(Equal(event.EventRecord{
			ID: ret.ID,
			Event: event.Event{
				SourceType: event.SourceTypeProductionRecord,
				SourceId:   1234,
				SourceDesc: "record1234",

				EventCategory:     event.EventCategoryPropertyUpdated,
				UpdatedProperties: event.UpdatedProperties{{PropertyName: "Status", OldValue: "IN_PROGRESS", NewValue: "PAUSED"}},
				UpdatedRelations: event.UpdatedRelations{{PropertyName: "Group", TargetType: event.SourceTypeProductionGroup,
					OldTargetId: "0", NewTargetId: "9"}},
				CreatorId: 333,
			},
			Timestamp: now,
			Synced:    false,
		}))
		Expect(ev).To(Equal(*ret))
		Expect(db).To(Equal(tx))
	})

	t.Run("should persist events and mark them synced after dispatch", func(t *testing.T) {
		testDatabase := testinfra.StartSqliteTestDatabase()
		defer testinfra.StopTestDatabase(testDatabase)
		defer func() { event.EventHandlers = nil }()

		db := testDatabase.DS.GormDB(context.Background())
		ok, err := event.CreateEvent(event.SourceTypeProject, 1, "project1", event.EventCategoryCreated, nil, nil, 0, now, db)
		Expect(err).To(BeNil())
		failing, err := event.CreateEvent(event.SourceTypeProject, 2, "project2", event.EventCategoryCreated, nil, nil, 0, now, db)
		Expect(err).To(BeNil())

		event.EventHandlers = []event.EventHandler{func(e *event.EventRecord) *event.EventHandleResult {
			return &event.EventHandleResult{Success: e.SourceId != types.ID(2), HandlerIdentifier: "test"}
		}}
		event.Dispatch([]*event.EventRecord{ok, failing})

		records := []event.EventRecord{}
		Expect(db.Model(&event.EventRecord{}).Order("source_id ASC").Find(&records).Error).To(BeNil())
		Expect(len(records)).To(Equal(2))
		Expect(records[0].Synced).To(BeTrue())
		Expect(records[0].Timestamp.Equal(now)).To(BeTrue())
		Expect(records[1].Synced).To(BeFalse())
	})
}

var defaultPersistCreate = event.EventPersistCreateFunc
