package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

// Reasons that stand for planned non-production time. Pauses with these reasons are not absences.
const (
	ReasonLunch      = "lunch"
	ReasonEndOfShift = "end of shift"
)

// Reasons used by pauses the system opens by itself.
const (
	ReasonNextOperation = "next operation"
	ReasonReverted      = "reverted"
)

type PauseInterval struct {
	ID        types.ID   `json:"id" gorm:"primary_key"`
	RecordID  types.ID   `json:"recordId" gorm:"index"`
	Reason    string     `json:"reason"`
	PausedAt  time.Time  `json:"pausedAt" gorm:"precision:6;not null"`
	ResumedAt *time.Time `json:"resumedAt" gorm:"precision:6"`
}

func (p *PauseInterval) IsOpen() bool {
	return p.ResumedAt == nil
}

func IsAbsenceReason(reason string) bool {
	return reason != ReasonLunch && reason != ReasonEndOfShift
}
