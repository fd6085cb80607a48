// Package schema is the single place listing every persisted model.
package schema

import (
	"shopfloor/domain"
	"shopfloor/event"

	"github.com/jinzhu/gorm"
)

func Models() []interface{} {
	return []interface{}{
		&domain.Part{}, &domain.Operation{},
		&domain.Project{}, &domain.ProductionGroup{},
		&domain.ProductionRecord{}, &domain.PauseInterval{},
		&event.EventRecord{},
	}
}

// Migrate creates or widens the tables. Existing columns are never dropped.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...).Error
}
