package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
)

type RecordStatus string

const (
	StatusInProgress RecordStatus = "IN_PROGRESS"
	StatusPaused     RecordStatus = "PAUSED"
	StatusFinished   RecordStatus = "FINISHED"
)

// ProductionRecord is one unit of work: a part, an operation, an operator and a quantity over a time window.
//
// Status PAUSED holds exactly when OpenPauseStart is set. EndTime is set only once FINISHED.
type ProductionRecord struct {
	ID          types.ID     `json:"id" gorm:"primary_key"`
	PartID      types.ID     `json:"partId" gorm:"index"`
	OperationID types.ID     `json:"operationId"`
	OperatorID  types.ID     `json:"operatorId"`
	Quantity    int          `json:"quantity"`
	Status      RecordStatus `json:"status" gorm:"type:varchar(16);index"`

	StartTime        time.Time     `json:"startTime" gorm:"precision:6;not null"`
	EndTime          *time.Time    `json:"endTime" gorm:"precision:6"`
	AccumulatedPause time.Duration `json:"accumulatedPause"`
	OpenPauseStart   *time.Time    `json:"openPauseStart" gorm:"precision:6"`

	ExpectedMinutes *int            `json:"expectedMinutes"`
	ChargedValue    decimal.Decimal `json:"chargedValue" gorm:"type:decimal(20,4)"`
	MaterialCost    decimal.Decimal `json:"materialCost" gorm:"type:decimal(20,4)"`

	GroupID           types.ID `json:"groupId" gorm:"index"`
	ProjectID         types.ID `json:"projectId" gorm:"index"`
	OperationSequence int      `json:"operationSequence"`
}

type ProductionStart struct {
	PartID          types.ID         `json:"partId"`
	OperationID     types.ID         `json:"operationId"`
	OperatorID      types.ID         `json:"operatorId" binding:"required"`
	Quantity        int              `json:"quantity" binding:"gte=0"`
	ChargedValue    *decimal.Decimal `json:"chargedValue"`
	MaterialCost    *decimal.Decimal `json:"materialCost"`
	ExpectedMinutes *int             `json:"expectedMinutes" binding:"omitempty,gt=0"`
	ProjectID       types.ID         `json:"projectId"`
}

type ProductionPause struct {
	Reason string `json:"reason" binding:"required"`
}

type ProductionFinish struct {
	ChargedValue *decimal.Decimal `json:"chargedValue"`
}

type ProductionContinuation struct {
	NextOperationID types.ID `json:"nextOperationId"`
	ExpectedMinutes *int     `json:"expectedMinutes" binding:"omitempty,gt=0"`
}

type ContinuationResult struct {
	Finished ProductionRecord `json:"finished"`
	Next     ProductionRecord `json:"next"`
}

type RecordDetail struct {
	ProductionRecord
	Pauses []PauseInterval `json:"pauses"`

	ActiveMinutes   decimal.Decimal  `json:"activeMinutes"`
	MinutesPerPiece *decimal.Decimal `json:"minutesPerPiece,omitempty"`
}

type AbsenceQuery struct {
	RecordIDs []types.ID `form:"recordId" binding:"required"`
}
