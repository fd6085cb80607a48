// Package sequencing links production records into multi-step runs: planned projects and retroactive groups.
package sequencing

import (
	"context"
	"fmt"
	"shopfloor/bizerror"
	"shopfloor/common"
	"shopfloor/domain"
	"shopfloor/domain/catalog"
	"shopfloor/domain/ledger"
	"shopfloor/domain/pause"
	"shopfloor/domain/production"
	"shopfloor/event"
	"shopfloor/idgen"
	"shopfloor/persistence"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var (
	projectIdWorker = idgen.NewWorker()

	CreateProjectFunc       = CreateProject
	DetailProjectFunc       = DetailProject
	FinalizeProjectFunc     = FinalizeProject
	ReopenProjectFunc       = ReopenProject
	RevertLastOperationFunc = RevertLastOperation
	DeleteProjectFunc       = DeleteProject
)

func CreateProject(ctx context.Context, c *domain.ProjectCreation, now time.Time) (*domain.Project, error) {
	if c.PartID == 0 {
		return nil, fmt.Errorf("project part: %w", bizerror.ErrMissingArgument)
	}
	if c.Quantity <= 0 {
		return nil, &bizerror.ErrBadParam{Cause: fmt.Errorf("quantity must be positive")}
	}
	now = common.NormalizeTime(now)

	p := &domain.Project{
		ID:                       idgen.NextID(projectIdWorker),
		PartID:                   c.PartID,
		Quantity:                 c.Quantity,
		Description:              c.Description,
		Status:                   domain.ProjectPending,
		EstimatedMinutesPerPiece: c.EstimatedMinutesPerPiece,
		ChargedValuePerPiece:     c.ChargedValuePerPiece,
		MaterialCost:             c.MaterialCost,
		CreateTime:               now,
	}
	var ev *event.EventRecord
	err := persistence.Transaction(ctx, func(tx *gorm.DB) error {
		part, err := catalog.DetailPart(tx, c.PartID)
		if err != nil {
			return err
		}
		p.CompanyID = part.CompanyID
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		ev, err = CreateProjectEvent(p, event.EventCategoryCreated, nil, now, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	event.Dispatch([]*event.EventRecord{ev})
	return p, nil
}

func DetailProject(ctx context.Context, id types.ID) (*domain.ProjectDetail, error) {
	detail := &domain.ProjectDetail{}
	err := persistence.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&detail.Project).Error; err != nil {
			if persistence.IsNotFound(err) {
				return fmt.Errorf("project %d: %w", id, bizerror.ErrNotFound)
			}
			return err
		}
		return tx.Where("project_id = ?", id).Order("operation_sequence ASC, start_time ASC").Find(&detail.Records).Error
	})
	if err != nil {
		return nil, err
	}
	if detail.Records == nil {
		detail.Records = []domain.ProductionRecord{}
	}
	return detail, nil
}

func lockProject(tx *gorm.DB, id types.ID) (*domain.Project, error) {
	p := domain.Project{}
	if err := persistence.ForUpdate(tx).Where("id = ?", id).First(&p).Error; err != nil {
		if persistence.IsNotFound(err) {
			return nil, fmt.Errorf("project %d: %w", id, bizerror.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// changeProjectStatus moves the project from the status it was read with, failing if another request got there first.
func changeProjectStatus(tx *gorm.DB, p *domain.Project, to domain.ProjectStatus, changes map[string]interface{}, now time.Time) (*event.EventRecord, error) {
	from := p.Status
	changes["status"] = to
	db := tx.Model(&domain.Project{}).Where("id = ? AND status = ?", p.ID, from).Updates(changes)
	if db.Error != nil {
		return nil, db.Error
	}
	if db.RowsAffected != 1 {
		return nil, fmt.Errorf("project %d changed concurrently: %w", p.ID, bizerror.ErrInvalidState)
	}
	if err := tx.Where("id = ?", p.ID).First(p).Error; err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"projectId": p.ID, "from": from, "to": to}).Info("project status changed")
	return CreateProjectEvent(p, event.EventCategoryPropertyUpdated, event.StatusChange(string(from), string(to)), now, tx)
}

// FinalizeProject closes a project once none of its records is running. Paused records are tolerated.
// The real time is the active time of every ended record, in whole minutes.
func FinalizeProject(ctx context.Context, id types.ID, now time.Time) (*domain.Project, error) {
	now = common.NormalizeTime(now)
	var p *domain.Project
	var ev *event.EventRecord
	err := persistence.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		if p, err = lockProject(tx, id); err != nil {
			return err
		}
		if p.Status == domain.ProjectFinished {
			return fmt.Errorf("project %d: %w", id, bizerror.ErrAlreadyFinished)
		}

		var records []domain.ProductionRecord
		if err := tx.Where("project_id = ?", id).Find(&records).Error; err != nil {
			return err
		}
		var total time.Duration
		for i := range records {
			if records[i].Status == domain.StatusInProgress {
				return fmt.Errorf("project %d, record %d: %w", id, records[i].ID, bizerror.ErrHasActiveRecords)
			}
			if records[i].EndTime != nil {
				total += ledger.ActiveDuration(&records[i], now)
			}
		}

		realMinutes := ledger.WholeMinutes(total)
		ev, err = changeProjectStatus(tx, p, domain.ProjectFinished,
			map[string]interface{}{"real_time_minutes": realMinutes, "completed_at": now}, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	event.Dispatch([]*event.EventRecord{ev})
	return p, nil
}

// ReopenProject puts a finished project back to pending. Real time is left as is until the next finalize.
func ReopenProject(ctx context.Context, id types.ID, now time.Time) (*domain.Project, error) {
	now = common.NormalizeTime(now)
	var p *domain.Project
	var ev *event.EventRecord
	err := persistence.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		if p, err = lockProject(tx, id); err != nil {
			return err
		}
		if p.Status != domain.ProjectFinished {
			return fmt.Errorf("project %d: %w", id, bizerror.ErrNotFinished)
		}
		ev, err = changeProjectStatus(tx, p, domain.ProjectPending, map[string]interface{}{"completed_at": nil}, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	event.Dispatch([]*event.EventRecord{ev})
	return p, nil
}

// RevertLastOperation sends the most recently finished record of the project back to PAUSED.
// The time between its end and now is credited as pause, so its active duration stays what it was.
func RevertLastOperation(ctx context.Context, id types.ID, now time.Time) (*domain.RevertResult, error) {
	now = common.NormalizeTime(now)
	var events []*event.EventRecord
	result := &domain.RevertResult{}
	err := persistence.Transaction(ctx, func(tx *gorm.DB) error {
		p, err := lockProject(tx, id)
		if err != nil {
			return err
		}

		r := domain.ProductionRecord{}
		err = persistence.ForUpdate(tx).Where("project_id = ? AND status = ? AND end_time IS NOT NULL", id, domain.StatusFinished).
			Order("end_time DESC").First(&r).Error
		if persistence.IsNotFound(err) {
			return fmt.Errorf("project %d: %w", id, bizerror.ErrNothingToRevert)
		}
		if err != nil {
			return err
		}

		transition, err := production.Guard(domain.ActionRevert, &r)
		if err != nil {
			return err
		}
		if _, err := pause.OpenPause(tx, r.ID, domain.ReasonReverted, now); err != nil {
			return err
		}
		gap := common.NonNegative(now.Sub(*r.EndTime))
		changes := map[string]interface{}{"end_time": nil, "accumulated_pause": r.AccumulatedPause + gap, "open_pause_start": now}
		if err := production.CompareAndSwap(tx, &r, transition, changes); err != nil {
			return err
		}
		from := r.Status
		r.Status = domain.StatusPaused
		ev, err := production.CreateRecordStatusEvent(&r, from, now, tx)
		if err != nil {
			return err
		}
		events = append(events, ev)
		result.RecordID = r.ID

		if p.Status == domain.ProjectFinished {
			ev, err := changeProjectStatus(tx, p, domain.ProjectPending, map[string]interface{}{"completed_at": nil}, now)
			if err != nil {
				return err
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	event.Dispatch(events)
	return result, nil
}

// DeleteProject removes the project with its records and their pauses.
func DeleteProject(ctx context.Context, id types.ID, now time.Time) error {
	now = common.NormalizeTime(now)
	var events []*event.EventRecord
	err := persistence.Transaction(ctx, func(tx *gorm.DB) error {
		p, err := lockProject(tx, id)
		if err != nil {
			return err
		}
		var records []domain.ProductionRecord
		if err := tx.Where("project_id = ?", id).Find(&records).Error; err != nil {
			return err
		}
		if events, err = deleteRecords(tx, records, now); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&domain.Project{}).Error; err != nil {
			return err
		}
		ev, err := CreateProjectEvent(p, event.EventCategoryDeleted, nil, now, tx)
		if err != nil {
			return err
		}
		events = append(events, ev)
		return nil
	})
	if err != nil {
		return err
	}
	event.Dispatch(events)
	return nil
}

func deleteRecords(tx *gorm.DB, records []domain.ProductionRecord, now time.Time) ([]*event.EventRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}
	ids := make([]types.ID, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	if err := tx.Where("record_id IN (?)", ids).Delete(&domain.PauseInterval{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("id IN (?)", ids).Delete(&domain.ProductionRecord{}).Error; err != nil {
		return nil, err
	}
	events := make([]*event.EventRecord, 0, len(records))
	for i := range records {
		ev, err := production.CreateRecordDeletedEvent(&records[i], now, tx)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
