package event

import (
	"shopfloor/idgen"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	eventIdWorker = idgen.NewWorker()

	EventPersistCreateFunc = eventPersistCreate
)

// CreateEvent records a change on the transaction that performs it, so the event commits or rolls back with the change.
func CreateEvent(sourceType string, sourceId types.ID, sourceDesc string, category EventCategory,
	updatedProperties []UpdatedProperty, updatedRelations []UpdatedRelation,
	creatorId types.ID, now time.Time, tx *gorm.DB) (*EventRecord, error) {

	record := EventRecord{
		ID: idgen.NextID(eventIdWorker),
		Event: Event{
			SourceType: sourceType,
			SourceId:   sourceId,
			SourceDesc: sourceDesc,

			EventCategory:     category,
			UpdatedProperties: updatedProperties,
			UpdatedRelations:  updatedRelations,

			CreatorId: creatorId,
		},
		Synced:    false,
		Timestamp: now,
	}
	if err := EventPersistCreateFunc(&record, tx); err != nil {
		return nil, err
	}
	return &record, nil
}

func eventPersistCreate(record *EventRecord, tx *gorm.DB) error {
	return tx.Create(record).Error
}
