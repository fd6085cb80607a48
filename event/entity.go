package event

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fundwit/go-commons/types"
)

const (
	EventCategoryCreated         = "CREATED"
	EventCategoryDeleted         = "DELETED"
	EventCategoryPropertyUpdated = "PROPERTY_UPDATED"
	EventCategoryRelationUpdated = "RELATION_UPDATED"
)

const (
	SourceTypeProductionRecord = "PRODUCTION_RECORD"
	SourceTypeProject          = "PROJECT"
	SourceTypeProductionGroup  = "PRODUCTION_GROUP"
)

type EventCategory string

type Event struct {
	SourceId   types.ID `json:"sourceId" gorm:"index"`
	SourceType string   `json:"sourceType" gorm:"type:varchar(32)"`
	SourceDesc string   `json:"sourceDesc"`

	CreatorId types.ID `json:"creatorId"`

	EventCategory     EventCategory     `json:"eventCategory"` // CREATED, DELETED, PROPERTY_UPDATED, RELATION_UPDATED
	UpdatedProperties UpdatedProperties `json:"updatedProperties" sql:"type:TEXT"`
	UpdatedRelations  UpdatedRelations  `json:"updatedRelations" sql:"type:TEXT"`
}

type EventRecord struct {
	ID types.ID `json:"id" gorm:"primary_key"`
	Event

	Timestamp time.Time `json:"timestamp" gorm:"precision:6"`
	Synced    bool      `json:"synced"`
}

func (r *EventRecord) TableName() string {
	return "events"
}

type UpdatedProperty struct {
	PropertyName string `json:"propertyName"`
	OldValue     string `json:"oldValue"`
	NewValue     string `json:"newValue"`
}

type UpdatedProperties []UpdatedProperty

type UpdatedRelation struct {
	PropertyName string `json:"propertyName"`
	TargetType   string `json:"targetType"`
	OldTargetId  string `json:"oldTargetId"`
	NewTargetId  string `json:"newTargetId"`
}

type UpdatedRelations []UpdatedRelation

// StatusChange is the property list of a lifecycle transition.
func StatusChange(from, to string) UpdatedProperties {
	return UpdatedProperties{{PropertyName: "Status", OldValue: from, NewValue: to}}
}

func (t UpdatedProperties) Value() (driver.Value, error) {
	return jsonValue(t)
}

func (c *UpdatedProperties) Scan(v interface{}) error {
	return jsonScan(v, c)
}

func (t UpdatedRelations) Value() (driver.Value, error) {
	return jsonValue(t)
}

func (c *UpdatedRelations) Scan(v interface{}) error {
	return jsonScan(v, c)
}

func jsonValue(v interface{}) (driver.Value, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func jsonScan(v interface{}, target interface{}) error {
	if v == nil {
		return nil
	}
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), target)
}
