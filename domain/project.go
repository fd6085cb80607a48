package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
)

type ProjectStatus string

const (
	ProjectPending    ProjectStatus = "PENDING"
	ProjectInProgress ProjectStatus = "IN_PROGRESS"
	ProjectFinished   ProjectStatus = "FINISHED"
)

// Project is a planned multi-step job whose operations are recorded as production records.
type Project struct {
	ID          types.ID      `json:"id" gorm:"primary_key"`
	PartID      types.ID      `json:"partId"`
	CompanyID   types.ID      `json:"companyId" gorm:"index"`
	Quantity    int           `json:"quantity"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status" gorm:"type:varchar(16)"`

	EstimatedMinutesPerPiece decimal.NullDecimal `json:"estimatedMinutesPerPiece" gorm:"type:decimal(20,4)"`
	ChargedValuePerPiece     decimal.Decimal     `json:"chargedValuePerPiece" gorm:"type:decimal(20,4)"`
	MaterialCost             decimal.Decimal     `json:"materialCost" gorm:"type:decimal(20,4)"`
	RealTimeMinutes          *int64              `json:"realTimeMinutes"`

	CreateTime  time.Time  `json:"createTime" gorm:"precision:6"`
	CompletedAt *time.Time `json:"completedAt" gorm:"precision:6"`
}

type ProjectCreation struct {
	PartID                   types.ID            `json:"partId" binding:"required"`
	Quantity                 int                 `json:"quantity" binding:"required,gt=0"`
	Description              string              `json:"description"`
	EstimatedMinutesPerPiece decimal.NullDecimal `json:"estimatedMinutesPerPiece"`
	ChargedValuePerPiece     decimal.Decimal     `json:"chargedValuePerPiece"`
	MaterialCost             decimal.Decimal     `json:"materialCost"`
}

type ProjectDetail struct {
	Project
	Records []ProductionRecord `json:"records"`
}

type RevertResult struct {
	RecordID types.ID `json:"recordId"`
}
