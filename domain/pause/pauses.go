package pause

import (
	"fmt"
	"iter"
	"shopfloor/bizerror"
	"shopfloor/common"
	"shopfloor/domain"
	"shopfloor/idgen"
	"shopfloor/persistence"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var pauseIdWorker = idgen.NewWorker()

// OpenPause appends an ongoing pause to the record. A record holds at most one ongoing pause.
func OpenPause(tx *gorm.DB, recordID types.ID, reason string, now time.Time) (*domain.PauseInterval, error) {
	var count int
	if err := tx.Model(&domain.PauseInterval{}).Where("record_id = ? AND resumed_at IS NULL", recordID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("record %d is already paused: %w", recordID, bizerror.ErrInvalidState)
	}

	p := &domain.PauseInterval{
		ID:       idgen.NextID(pauseIdWorker),
		RecordID: recordID,
		Reason:   reason,
		PausedAt: now,
	}
	if err := tx.Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// ClosePause ends the ongoing pause of the record and returns how long it lasted.
func ClosePause(tx *gorm.DB, recordID types.ID, now time.Time) (time.Duration, error) {
	open := domain.PauseInterval{}
	err := tx.Where("record_id = ? AND resumed_at IS NULL", recordID).Order("paused_at DESC").First(&open).Error
	if persistence.IsNotFound(err) {
		return 0, fmt.Errorf("record %d: %w", recordID, bizerror.ErrNoOpenPause)
	}
	if err != nil {
		return 0, err
	}

	db := tx.Model(&domain.PauseInterval{}).Where("id = ? AND resumed_at IS NULL", open.ID).Update("resumed_at", now)
	if db.Error != nil {
		return 0, db.Error
	}
	if db.RowsAffected != 1 {
		return 0, fmt.Errorf("record %d: %w", recordID, bizerror.ErrNoOpenPause)
	}
	return common.NonNegative(now.Sub(open.PausedAt)), nil
}

// LoadPauses reads every pause of the given records in one query.
func LoadPauses(tx *gorm.DB, recordIDs []types.ID) (*Log, error) {
	log := &Log{order: dedup(recordIDs), byRecord: map[types.ID][]domain.PauseInterval{}}
	if len(log.order) == 0 {
		return log, nil
	}

	var intervals []domain.PauseInterval
	if err := tx.Where("record_id IN (?)", log.order).Order("paused_at ASC").Find(&intervals).Error; err != nil {
		return nil, err
	}
	for _, p := range intervals {
		log.byRecord[p.RecordID] = append(log.byRecord[p.RecordID], p)
	}
	return log, nil
}

// Log is a snapshot of pause intervals. Its sequences can be ranged over any number of times.
type Log struct {
	order    []types.ID
	byRecord map[types.ID][]domain.PauseInterval
}

// ByRecord yields each requested record with its pauses ordered by start, in request order.
func (l *Log) ByRecord() iter.Seq2[types.ID, []domain.PauseInterval] {
	return func(yield func(types.ID, []domain.PauseInterval) bool) {
		for _, id := range l.order {
			if !yield(id, l.byRecord[id]) {
				return
			}
		}
	}
}

func (l *Log) All() iter.Seq[domain.PauseInterval] {
	return func(yield func(domain.PauseInterval) bool) {
		for _, pauses := range l.ByRecord() {
			for _, p := range pauses {
				if !yield(p) {
					return
				}
			}
		}
	}
}

// Absences skips the planned stops (lunch, end of shift).
func (l *Log) Absences() iter.Seq[domain.PauseInterval] {
	return func(yield func(domain.PauseInterval) bool) {
		for p := range l.All() {
			if domain.IsAbsenceReason(p.Reason) && !yield(p) {
				return
			}
		}
	}
}

func (l *Log) Of(recordID types.ID) []domain.PauseInterval {
	return l.byRecord[recordID]
}

// ClosedDuration sums the finished pauses of the record.
func (l *Log) ClosedDuration(recordID types.ID) time.Duration {
	var total time.Duration
	for _, p := range l.byRecord[recordID] {
		if p.ResumedAt != nil {
			total += common.NonNegative(p.ResumedAt.Sub(p.PausedAt))
		}
	}
	return total
}

func dedup(ids []types.ID) []types.ID {
	seen := make(map[types.ID]bool, len(ids))
	r := make([]types.ID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			r = append(r, id)
		}
	}
	return r
}
