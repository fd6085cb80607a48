package sequencing

import (
	"context"
	"fmt"
	"regexp"
	"shopfloor/bizerror"
	"shopfloor/common"
	"shopfloor/domain"
	"shopfloor/domain/catalog"
	"shopfloor/event"
	"shopfloor/idgen"
	"shopfloor/persistence"
	"sort"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PrimaryOperationPattern matches the operation names that open a batch, e.g. the lathe step.
var PrimaryOperationPattern = regexp.MustCompile(`(?i)(lathe|turning|torno)`)

var (
	groupIdWorker = idgen.NewWorker()

	GroupUngroupedFunc = GroupUngrouped
	DeleteGroupFunc    = DeleteGroup
)

// GroupUngrouped gathers the ungrouped records of a part code, outside any project, into one group.
// Fewer than two records is not worth a group and is reported as skipped.
func GroupUngrouped(ctx context.Context, partCode string, now time.Time) (*domain.GroupingResult, error) {
	if partCode == "" {
		return nil, fmt.Errorf("part code: %w", bizerror.ErrMissingArgument)
	}
	now = common.NormalizeTime(now)

	result := &domain.GroupingResult{Status: domain.GroupingStatusSkipped, Records: []domain.ProductionRecord{}}
	var events []*event.EventRecord
	err := persistence.Transaction(ctx, func(tx *gorm.DB) error {
		parts, err := catalog.FindPartsByCode(tx, partCode)
		if err != nil {
			return err
		}
		if len(parts) == 0 {
			return nil
		}
		partsByID := make(map[types.ID]domain.Part, len(parts))
		partIDs := make([]types.ID, 0, len(parts))
		for _, p := range parts {
			partsByID[p.ID] = p
			partIDs = append(partIDs, p.ID)
		}

		var records []domain.ProductionRecord
		if err := persistence.ForUpdate(tx).Where("part_id IN (?) AND group_id = 0 AND project_id = 0", partIDs).
			Order("start_time ASC").Find(&records).Error; err != nil {
			return err
		}
		if len(records) < 2 {
			result.Records = append(result.Records, records...)
			return nil
		}

		primary := make(map[types.ID]bool, len(records))
		for _, r := range records {
			op, err := catalog.DetailOperation(tx, r.OperationID)
			if err != nil {
				return err
			}
			primary[r.ID] = PrimaryOperationPattern.MatchString(op.Name)
		}
		sort.SliceStable(records, func(i, j int) bool {
			pi, pj := primary[records[i].ID], primary[records[j].ID]
			if pi != pj {
				return pi
			}
			return records[i].StartTime.Before(records[j].StartTime)
		})

		firstPart := partsByID[records[0].PartID]
		group := &domain.ProductionGroup{
			ID:              idgen.NextID(groupIdWorker),
			PartCode:        partCode,
			PartDescription: firstPart.Description,
			Quantity:        records[0].Quantity,
			CompanyID:       firstPart.CompanyID,
			CreateTime:      now,
		}
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		ev, err := CreateGroupEvent(group, event.EventCategoryCreated, now, tx)
		if err != nil {
			return err
		}
		events = append(events, ev)

		for i := range records {
			r := &records[i]
			changes := map[string]interface{}{"group_id": group.ID, "operation_sequence": i + 1}
			if i > 0 {
				// the batch is charged once, on its primary record
				changes["charged_value"] = decimal.Zero
			}
			db := tx.Model(&domain.ProductionRecord{}).Where("id = ? AND group_id = 0", r.ID).Updates(changes)
			if db.Error != nil {
				return db.Error
			}
			if db.RowsAffected != 1 {
				return fmt.Errorf("production record %d grouped concurrently: %w", r.ID, bizerror.ErrInvalidState)
			}
			if err := tx.Where("id = ?", r.ID).First(r).Error; err != nil {
				return err
			}
			ev, err := CreateRecordGroupedEvent(r, group.ID, now, tx)
			if err != nil {
				return err
			}
			events = append(events, ev)
		}

		result.Status = domain.GroupingStatusGrouped
		result.GroupID = group.ID
		result.Records = records
		return nil
	})
	if err != nil {
		return nil, err
	}
	event.Dispatch(events)

	logrus.WithFields(logrus.Fields{"partCode": partCode, "status": result.Status, "groupId": result.GroupID}).
		Infof("grouping of %d records", len(result.Records))
	return result, nil
}

// DeleteGroup removes the group with its records and their pauses.
func DeleteGroup(ctx context.Context, id types.ID, now time.Time) error {
	now = common.NormalizeTime(now)
	var events []*event.EventRecord
	err := persistence.Transaction(ctx, func(tx *gorm.DB) error {
		g := domain.ProductionGroup{}
		if err := persistence.ForUpdate(tx).Where("id = ?", id).First(&g).Error; err != nil {
			if persistence.IsNotFound(err) {
				return fmt.Errorf("production group %d: %w", id, bizerror.ErrNotFound)
			}
			return err
		}
		var records []domain.ProductionRecord
		if err := tx.Where("group_id = ?", id).Find(&records).Error; err != nil {
			return err
		}
		var err error
		if events, err = deleteRecords(tx, records, now); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&domain.ProductionGroup{}).Error; err != nil {
			return err
		}
		ev, err := CreateGroupEvent(&g, event.EventCategoryDeleted, now, tx)
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
