package sequencing

import (
	"shopfloor/domain"
	"shopfloor/domain/production"
	"shopfloor/event"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

func CreateProjectEvent(p *domain.Project, category event.EventCategory, updates []event.UpdatedProperty, now time.Time, tx *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypeProject, p.ID, p.Description, category, updates, nil, 0, now, tx)
}

func CreateGroupEvent(g *domain.ProductionGroup, category event.EventCategory, now time.Time, tx *gorm.DB) (*event.EventRecord, error) {
	return event.CreateEvent(event.SourceTypeProductionGroup, g.ID, g.PartCode, category, nil, nil, 0, now, tx)
}

func groupRelation(oldGroup, newGroup types.ID) []event.UpdatedRelation {
	return []event.UpdatedRelation{{PropertyName: "Group", TargetType: event.SourceTypeProductionGroup,
		OldTargetId: oldGroup.String(), NewTargetId: newGroup.String()}}
}

func CreateRecordGroupedEvent(r *domain.ProductionRecord, groupID types.ID, now time.Time, tx *gorm.DB) (*event.EventRecord, error) {
	return production.CreateRecordRelationEvent(r, groupRelation(0, groupID), now, tx)
}
