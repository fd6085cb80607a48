package production

import (
	"fmt"
	"shopfloor/bizerror"
	"shopfloor/domain"
	"shopfloor/domain/state"
	"shopfloor/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

// LockRecord reads the record for a state change. On mysql the row stays locked until the transaction ends.
func LockRecord(tx *gorm.DB, id types.ID) (*domain.ProductionRecord, error) {
	r := domain.ProductionRecord{}
	if err := persistence.ForUpdate(tx).Where("id = ?", id).First(&r).Error; err != nil {
		if persistence.IsNotFound(err) {
			return nil, fmt.Errorf("production record %d: %w", id, bizerror.ErrNotFound)
		}
		return nil, err
	}
	return &r, nil
}

// Guard checks that action may leave the record's current status.
func Guard(action string, r *domain.ProductionRecord) (state.Transition, error) {
	transition, ok := domain.ProductionStateMachine.Fire(action, string(r.Status))
	if ok {
		return transition, nil
	}
	if r.Status == domain.StatusFinished && (action == domain.ActionFinish || action == domain.ActionContinue) {
		return transition, fmt.Errorf("production record %d: %w", r.ID, bizerror.ErrAlreadyFinished)
	}
	return transition, fmt.Errorf("cannot %s production record %d in status %s: %w", action, r.ID, r.Status, bizerror.ErrInvalidState)
}

// CompareAndSwap applies changes only while the record still has the status it was read with.
// A lost race is reported the same way Guard reports it against the fresh row.
func CompareAndSwap(tx *gorm.DB, r *domain.ProductionRecord, transition state.Transition, changes map[string]interface{}) error {
	changes["status"] = transition.To.Name
	db := tx.Model(&domain.ProductionRecord{}).Where("id = ? AND status = ?", r.ID, transition.From.Name).Updates(changes)
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected != 1 {
		fresh := domain.ProductionRecord{}
		if err := tx.Where("id = ?", r.ID).First(&fresh).Error; err != nil {
			return err
		}
		if _, err := Guard(transition.Name, &fresh); err != nil {
			return err
		}
		return fmt.Errorf("production record %d changed concurrently: %w", r.ID, bizerror.ErrInvalidState)
	}

	logrus.WithFields(logrus.Fields{"recordId": r.ID, "from": transition.From.Name, "to": transition.To.Name}).
		Info("production record " + transition.Name)
	return nil
}

// NextSequence returns one past the highest operation sequence recorded under the project.
func NextSequence(tx *gorm.DB, projectID types.ID) (int, error) {
	return nextSequence(tx, "project_id = ?", projectID)
}

// NextGroupSequence is the position after the last record of the group.
func NextGroupSequence(tx *gorm.DB, groupID types.ID) (int, error) {
	return nextSequence(tx, "group_id = ?", groupID)
}

func nextSequence(tx *gorm.DB, owner string, ownerID types.ID) (int, error) {
	var max int
	row := tx.Model(&domain.ProductionRecord{}).Where(owner, ownerID).
		Select("COALESCE(MAX(operation_sequence), 0)").Row()
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return max + 1, nil
}
