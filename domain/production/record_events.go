package production

import (
	"shopfloor/domain"
	"shopfloor/event"
	"time"

	"github.com/jinzhu/gorm"
)

func recordDesc(r *domain.ProductionRecord) string {
	return "record " + r.ID.String()
}

func CreateRecordCreatedEvent(r *domain.ProductionRecord, now time.Time, tx *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypeProductionRecord, r.ID, recordDesc(r), event.EventCategoryCreated,
		nil, nil, r.OperatorID, now, tx)
}

func CreateRecordDeletedEvent(r *domain.ProductionRecord, now time.Time, tx *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypeProductionRecord, r.ID, recordDesc(r), event.EventCategoryDeleted,
		nil, nil, r.OperatorID, now, tx)
}

func CreateRecordStatusEvent(r *domain.ProductionRecord, from domain.RecordStatus, now time.Time, tx *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypeProductionRecord, r.ID, recordDesc(r), event.EventCategoryPropertyUpdated,
		event.StatusChange(string(from), string(r.Status)), nil, r.OperatorID, now, tx)
}

func CreateRecordRelationEvent(r *domain.ProductionRecord, updates []event.UpdatedRelation, now time.Time, tx *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypeProductionRecord, r.ID, recordDesc(r), event.EventCategoryRelationUpdated,
		nil, updates, r.OperatorID, now, tx)
}
