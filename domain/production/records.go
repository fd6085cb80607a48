// Package production drives the lifecycle of production records: start, pause, resume, finish and continue.
package production

import (
	"context"
	"fmt"
	"shopfloor/bizerror"
	"shopfloor/common"
	"shopfloor/domain"
	"shopfloor/domain/catalog"
	"shopfloor/domain/ledger"
	"shopfloor/domain/pause"
	"shopfloor/event"
	"shopfloor/idgen"
	"shopfloor/persistence"
	"slices"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	recordIdWorker = idgen.NewWorker()

	StartFunc                   = Start
	PauseFunc                   = Pause
	ResumeFunc                  = Resume
	FinishFunc                  = Finish
	ContinueToNextOperationFunc = ContinueToNextOperation
	DetailRecordFunc            = DetailRecord
	QueryPausesFunc             = QueryPauses
	QueryAbsencesFunc           = QueryAbsences
	LoadRecordsFunc             = LoadRecords
)

func Start(ctx context.Context, c *domain.ProductionStart, now time.Time) (*domain.ProductionRecord, error) {
	if c.OperationID == 0 {
		return nil, bizerror.ErrMissingOperation
	}
	if c.OperatorID == 0 || (c.PartID == 0 && c.ProjectID == 0) {
		return nil, fmt.Errorf("start needs an operator and a part or project: %w", bizerror.ErrMissingArgument)
	}
	if c.Quantity < 0 {
		return nil, &bizerror.ErrBadParam{Cause: fmt.Errorf("quantity must not be negative")}
	}
	now = common.NormalizeTime(now)

	r := &domain.ProductionRecord{
		ID:              idgen.NextID(recordIdWorker),
		PartID:          c.PartID,
		OperationID:     c.OperationID,
		OperatorID:      c.OperatorID,
		Quantity:        c.Quantity,
		Status:          domain.StatusInProgress,
		StartTime:       now,
		ExpectedMinutes: c.ExpectedMinutes,
		ChargedValue:    decimal.Zero,
		MaterialCost:    decimal.Zero,
		ProjectID:       c.ProjectID,

		OperationSequence: 1,
	}
	if c.ChargedValue != nil {
		r.ChargedValue = *c.ChargedValue
	}
	if c.MaterialCost != nil {
		r.MaterialCost = *c.MaterialCost
	}

	var events []*event.EventRecord
	err := persistence.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := catalog.DetailOperation(tx, c.OperationID); err != nil {
			return err
		}
		if c.ProjectID != 0 {
			ev, err := attachToProject(tx, r, c, now)
			if err != nil {
				return err
			}
			if ev != nil {
				events = append(events, ev)
			}
		}
		// zero only means "take the project's quantity"
		if r.Quantity <= 0 {
			return &bizerror.ErrBadParam{Cause: fmt.Errorf("quantity must be positive")}
		}
		if _, err := catalog.DetailPart(tx, r.PartID); err != nil {
			return err
		}

		if err := tx.Create(r).Error; err != nil {
			return err
		}
		ev, err := CreateRecordCreatedEvent(r, now, tx)
		if err != nil {
			return err
		}
		events = append(events, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	event.Dispatch(events)

	logrus.WithFields(logrus.Fields{"recordId": r.ID, "projectId": r.ProjectID, "sequence": r.OperationSequence}).
		Info("production record started")
	return r, nil
}

// attachToProject fills the record from its project and moves a pending project into progress.
func attachToProject(tx *gorm.DB, r *domain.ProductionRecord, c *domain.ProductionStart, now time.Time) (*event.EventRecord, error) {
	project := domain.Project{}
	if err := persistence.ForUpdate(tx).Where("id = ?", c.ProjectID).First(&project).Error; err != nil {
		if persistence.IsNotFound(err) {
			return nil, fmt.Errorf("project %d: %w", c.ProjectID, bizerror.ErrNotFound)
		}
		return nil, err
	}
	if project.Status == domain.ProjectFinished {
		return nil, fmt.Errorf("project %d: %w", project.ID, bizerror.ErrAlreadyFinished)
	}

	seq, err := NextSequence(tx, project.ID)
	if err != nil {
		return nil, err
	}
	r.OperationSequence = seq
	if r.PartID == 0 {
		r.PartID = project.PartID
	}
	if r.Quantity == 0 {
		r.Quantity = project.Quantity
	}
	if c.ChargedValue == nil && seq == 1 {
		r.ChargedValue = project.ChargedValuePerPiece
	}
	if c.MaterialCost == nil && seq == 1 {
		r.MaterialCost = project.MaterialCost
	}
	if r.ExpectedMinutes == nil && project.EstimatedMinutesPerPiece.Valid {
		// expected minutes are a per-batch total
		expected := int(project.EstimatedMinutesPerPiece.Decimal.Mul(decimal.NewFromInt(int64(r.Quantity))).Round(0).IntPart())
		r.ExpectedMinutes = &expected
	}

	if project.Status != domain.ProjectPending {
		return nil, nil
	}
	db := tx.Model(&domain.Project{}).Where("id = ? AND status = ?", project.ID, domain.ProjectPending).
		Update("status", domain.ProjectInProgress)
	if db.Error != nil {
		return nil, db.Error
	}
	if db.RowsAffected != 1 {
		return nil, fmt.Errorf("project %d changed concurrently: %w", project.ID, bizerror.ErrInvalidState)
	}
	return event.CreateEvent(event.SourceTypeProject, project.ID, project.Description, event.EventCategoryPropertyUpdated,
		event.StatusChange(string(domain.ProjectPending), string(domain.ProjectInProgress)), nil, c.OperatorID, now, tx)
}

func Pause(ctx context.Context, id types.ID, reason string, now time.Time) (*domain.ProductionRecord, error) {
	if reason == "" {
		return nil, fmt.Errorf("pause reason: %w", bizerror.ErrMissingArgument)
	}
	now = common.NormalizeTime(now)
	return transit(ctx, id, domain.ActionPause, func(tx *gorm.DB, r *domain.ProductionRecord) (map[string]interface{}, error) {
		if _, err := pause.OpenPause(tx, r.ID, reason, now); err != nil {
			return nil, err
		}
		return map[string]interface{}{"open_pause_start": now}, nil
	}, now)
}

func Resume(ctx context.Context, id types.ID, now time.Time) (*domain.ProductionRecord, error) {
	now = common.NormalizeTime(now)
	return transit(ctx, id, domain.ActionResume, func(tx *gorm.DB, r *domain.ProductionRecord) (map[string]interface{}, error) {
		d, err := pause.ClosePause(tx, r.ID, now)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"open_pause_start": nil, "accumulated_pause": r.AccumulatedPause + d}, nil
	}, now)
}

// Finish closes any open pause and stamps the end time. A supplied charged value only ever raises the stored one.
func Finish(ctx context.Context, id types.ID, chargedValue *decimal.Decimal, now time.Time) (*domain.ProductionRecord, error) {
	now = common.NormalizeTime(now)
	return transit(ctx, id, domain.ActionFinish, func(tx *gorm.DB, r *domain.ProductionRecord) (map[string]interface{}, error) {
		return finishChanges(tx, r, chargedValue, now)
	}, now)
}

func finishChanges(tx *gorm.DB, r *domain.ProductionRecord, chargedValue *decimal.Decimal, now time.Time) (map[string]interface{}, error) {
	changes := map[string]interface{}{}
	if r.Status == domain.StatusPaused {
		d, err := pause.ClosePause(tx, r.ID, now)
		if err != nil {
			return nil, err
		}
		changes["accumulated_pause"] = r.AccumulatedPause + d
		changes["open_pause_start"] = nil
	}
	end := now
	if end.Before(r.StartTime) {
		end = r.StartTime
	}
	changes["end_time"] = end
	if chargedValue != nil && chargedValue.GreaterThan(r.ChargedValue) {
		changes["charged_value"] = *chargedValue
	}
	return changes, nil
}

type changeFunc func(tx *gorm.DB, r *domain.ProductionRecord) (map[string]interface{}, error)

func transit(ctx context.Context, id types.ID, action string, change changeFunc, now time.Time) (*domain.ProductionRecord, error) {
	var ev *event.EventRecord
	var updated *domain.ProductionRecord
	err := persistence.Transaction(ctx, func(tx *gorm.DB) error {
		r, err := LockRecord(tx, id)
		if err != nil {
			return err
		}
		transition, err := Guard(action, r)
		if err != nil {
			return err
		}
		changes, err := change(tx, r)
		if err != nil {
			return err
		}
		if err := CompareAndSwap(tx, r, transition, changes); err != nil {
			return err
		}

		updated = &domain.ProductionRecord{}
		if err := tx.Where("id = ?", id).First(updated).Error; err != nil {
			return err
		}
		ev, err = CreateRecordStatusEvent(updated, r.Status, now, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	event.Dispatch([]*event.EventRecord{ev})
	return updated, nil
}

// ContinueToNextOperation finishes the record and creates the record of the next operation already paused,
// so its clock only runs once the operator resumes it at the next station.
func ContinueToNextOperation(ctx context.Context, id types.ID, c *domain.ProductionContinuation, now time.Time) (*domain.ContinuationResult, error) {
	if c == nil || c.NextOperationID == 0 {
		return nil, bizerror.ErrMissingOperation
	}
	now = common.NormalizeTime(now)

	var events []*event.EventRecord
	result := &domain.ContinuationResult{}
	err := persistence.Transaction(ctx, func(tx *gorm.DB) error {
		r, err := LockRecord(tx, id)
		if err != nil {
			return err
		}
		transition, err := Guard(domain.ActionContinue, r)
		if err != nil {
			return err
		}
		if _, err := catalog.DetailOperation(tx, c.NextOperationID); err != nil {
			return err
		}
		changes, err := finishChanges(tx, r, nil, now)
		if err != nil {
			return err
		}
		if err := CompareAndSwap(tx, r, transition, changes); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).First(&result.Finished).Error; err != nil {
			return err
		}
		ev, err := CreateRecordStatusEvent(&result.Finished, r.Status, now, tx)
		if err != nil {
			return err
		}
		events = append(events, ev)

		seq := r.OperationSequence + 1
		switch {
		case r.ProjectID != 0:
			if seq, err = NextSequence(tx, r.ProjectID); err != nil {
				return err
			}
		case r.GroupID != 0:
			if seq, err = NextGroupSequence(tx, r.GroupID); err != nil {
				return err
			}
		}
		result.Next = domain.ProductionRecord{
			ID:                idgen.NextID(recordIdWorker),
			PartID:            r.PartID,
			OperationID:       c.NextOperationID,
			OperatorID:        r.OperatorID,
			Quantity:          r.Quantity,
			Status:            domain.StatusPaused,
			StartTime:         now,
			OpenPauseStart:    &now,
			ExpectedMinutes:   c.ExpectedMinutes,
			ChargedValue:      decimal.Zero,
			MaterialCost:      decimal.Zero,
			GroupID:           r.GroupID,
			ProjectID:         r.ProjectID,
			OperationSequence: seq,
		}
		if err := tx.Create(&result.Next).Error; err != nil {
			return err
		}
		if _, err := pause.OpenPause(tx, result.Next.ID, domain.ReasonNextOperation, now); err != nil {
			return err
		}
		ev, err = CreateRecordCreatedEvent(&result.Next, now, tx)
		if err != nil {
			return err
		}
		events = append(events, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	event.Dispatch(events)

	logrus.WithFields(logrus.Fields{"recordId": result.Finished.ID, "nextRecordId": result.Next.ID}).
		Info("production record continued to next operation")
	return result, nil
}

func DetailRecord(ctx context.Context, id types.ID, now time.Time) (*domain.RecordDetail, error) {
	detail := &domain.RecordDetail{}
	err := persistence.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&detail.ProductionRecord).Error; err != nil {
			if persistence.IsNotFound(err) {
				return fmt.Errorf("production record %d: %w", id, bizerror.ErrNotFound)
			}
			return err
		}
		log, err := pause.LoadPauses(tx, []types.ID{id})
		if err != nil {
			return err
		}
		detail.Pauses = slices.Collect(log.All())
		return nil
	})
	if err != nil {
		return nil, err
	}
	if detail.Pauses == nil {
		detail.Pauses = []domain.PauseInterval{}
	}

	detail.ActiveMinutes = ledger.Minutes(ledger.ActiveDuration(&detail.ProductionRecord, now))
	if perPiece, ok := ledger.TimePerPiece(&detail.ProductionRecord, now); ok {
		detail.MinutesPerPiece = &perPiece
	}
	return detail, nil
}

// QueryPauses reads the pause log of the given records in one snapshot.
func QueryPauses(ctx context.Context, recordIDs []types.ID) (*pause.Log, error) {
	var log *pause.Log
	err := persistence.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		log, err = pause.LoadPauses(tx, recordIDs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

// QueryAbsences lists the pauses of the records that were not planned stops.
func QueryAbsences(ctx context.Context, recordIDs []types.ID) ([]domain.PauseInterval, error) {
	if len(recordIDs) == 0 {
		return nil, fmt.Errorf("record ids: %w", bizerror.ErrMissingArgument)
	}
	log, err := QueryPausesFunc(ctx, recordIDs)
	if err != nil {
		return nil, err
	}
	absences := slices.Collect(log.Absences())
	if absences == nil {
		absences = []domain.PauseInterval{}
	}
	return absences, nil
}

// LoadRecords pages through every record by id, page starts at 1.
func LoadRecords(ctx context.Context, page, pageSize int) ([]domain.ProductionRecord, error) {
	var records []domain.ProductionRecord
	err := persistence.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&records).Error
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
