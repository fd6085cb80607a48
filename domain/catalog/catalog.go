// Package catalog looks up the part and operation reference rows the production core depends on.
// Reference rows change rarely, so lookups by id go through an in-process cache.
package catalog

import (
	"context"
	"fmt"
	"shopfloor/bizerror"
	"shopfloor/domain"
	"shopfloor/idgen"
	"shopfloor/persistence"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const CacheExpiration = 10 * time.Minute

var (
	partIdWorker      = idgen.NewWorker()
	operationIdWorker = idgen.NewWorker()

	referenceCache = cache.New(CacheExpiration, time.Minute)
)

func CreatePart(ctx context.Context, c *domain.PartCreation) (*domain.Part, error) {
	if c.CompanyID == 0 || c.Code == "" {
		return nil, fmt.Errorf("part needs company and code: %w", bizerror.ErrMissingArgument)
	}
	part := &domain.Part{ID: idgen.NextID(partIdWorker), CompanyID: c.CompanyID, Code: c.Code, Description: c.Description}
	err := persistence.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(part).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.WithField("partId", part.ID).Infof("part %s created for company %d", part.Code, part.CompanyID)
	return part, nil
}

func CreateOperation(ctx context.Context, c *domain.OperationCreation) (*domain.Operation, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("operation needs a name: %w", bizerror.ErrMissingArgument)
	}
	op := &domain.Operation{ID: idgen.NextID(operationIdWorker), Name: c.Name, MachineHourlyRate: c.MachineHourlyRate}
	err := persistence.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(op).Error
	})
	if err != nil {
		return nil, err
	}
	logrus.WithField("operationId", op.ID).Infof("operation %s created", op.Name)
	return op, nil
}

func DetailPart(tx *gorm.DB, id types.ID) (*domain.Part, error) {
	key := "part:" + id.String()
	if v, found := referenceCache.Get(key); found {
		part := v.(domain.Part)
		return &part, nil
	}

	part := domain.Part{}
	if err := tx.Where("id = ?", id).First(&part).Error; err != nil {
		if persistence.IsNotFound(err) {
			return nil, fmt.Errorf("part %d: %w", id, bizerror.ErrNotFound)
		}
		return nil, err
	}
	referenceCache.SetDefault(key, part)
	return &part, nil
}

func DetailOperation(tx *gorm.DB, id types.ID) (*domain.Operation, error) {
	key := "operation:" + id.String()
	if v, found := referenceCache.Get(key); found {
		op := v.(domain.Operation)
		return &op, nil
	}

	op := domain.Operation{}
	if err := tx.Where("id = ?", id).First(&op).Error; err != nil {
		if persistence.IsNotFound(err) {
			return nil, fmt.Errorf("operation %d: %w", id, bizerror.ErrNotFound)
		}
		return nil, err
	}
	referenceCache.SetDefault(key, op)
	return &op, nil
}

// FindPartsByCode returns the parts of every company sharing the code.
func FindPartsByCode(tx *gorm.DB, code string) ([]domain.Part, error) {
	var parts []domain.Part
	if err := tx.Where("code = ?", code).Order("id ASC").Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

func InvalidateCache() {
	referenceCache.Flush()
}
