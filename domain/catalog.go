package domain

import (
	"github.com/fundwit/go-commons/types"
	"github.com/shopspring/decimal"
)

// Part codes are unique within a company.
type Part struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	CompanyID   types.ID `json:"companyId" gorm:"unique_index:uix_parts_company_code"`
	Code        string   `json:"code" gorm:"type:varchar(64);unique_index:uix_parts_company_code"`
	Description string   `json:"description"`
}

type PartCreation struct {
	CompanyID   types.ID `json:"companyId" binding:"required"`
	Code        string   `json:"code" binding:"required"`
	Description string   `json:"description"`
}

type Operation struct {
	ID                types.ID        `json:"id" gorm:"primary_key"`
	Name              string          `json:"name"`
	MachineHourlyRate decimal.Decimal `json:"machineHourlyRate" gorm:"type:decimal(20,4)"`
}

type OperationCreation struct {
	Name              string          `json:"name" binding:"required"`
	MachineHourlyRate decimal.Decimal `json:"machineHourlyRate"`
}
