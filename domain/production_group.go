package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

// ProductionGroup clusters ungrouped records of one part code after the fact.
type ProductionGroup struct {
	ID              types.ID  `json:"id" gorm:"primary_key"`
	PartCode        string    `json:"partCode" gorm:"index"`
	PartDescription string    `json:"partDescription"`
	Quantity        int       `json:"quantity"`
	CompanyID       types.ID  `json:"companyId"`
	CreateTime      time.Time `json:"createTime" gorm:"precision:6"`
}

type ProductionGrouping struct {
	PartCode string `json:"partCode" binding:"required"`
}

const (
	GroupingStatusGrouped = "grouped"
	GroupingStatusSkipped = "skipped"
)

type GroupingResult struct {
	Status  string             `json:"status"`
	GroupID types.ID           `json:"groupId,omitempty"`
	Records []ProductionRecord `json:"records"`
}
