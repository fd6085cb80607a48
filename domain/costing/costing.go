// Package costing rolls time, charge and cost of production records up to a rating against the target rate.
package costing

import (
	"context"
	"fmt"
	"shopfloor/bizerror"
	"shopfloor/domain"
	"shopfloor/domain/catalog"
	"shopfloor/domain/ledger"
	"shopfloor/persistence"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

var (
	// TargetValuePerMinute is the charge per active minute the shop aims for.
	TargetValuePerMinute = decimal.RequireFromString("1.00")
	// Tolerance absorbs rounding noise around the target.
	Tolerance = decimal.RequireFromString("0.01")

	RecordMetricsFunc  = RecordMetrics
	GroupMetricsFunc   = GroupMetrics
	ProjectMetricsFunc = ProjectMetrics
	CompanyMetricsFunc = CompanyMetrics
)

type Rating string

const (
	RatingPoor       Rating = "poor"
	RatingOnTarget   Rating = "on_target"
	RatingExcellent  Rating = "excellent"
	RatingInProgress Rating = "in_progress"
	RatingUnrated    Rating = "unrated"
)

const (
	ScopeRecord  = "record"
	ScopeGroup   = "group"
	ScopeProject = "project"
	ScopeCompany = "company"
)

type RecordFigures struct {
	RecordID          types.ID            `json:"recordId"`
	Status            domain.RecordStatus `json:"status"`
	OperationSequence int                 `json:"operationSequence"`
	Quantity          int                 `json:"quantity"`
	ActiveMinutes     decimal.Decimal     `json:"activeMinutes"`
	MinutesPerPiece   *decimal.Decimal    `json:"minutesPerPiece,omitempty"`
	Charged           decimal.Decimal     `json:"charged"`
	MachineCost       *decimal.Decimal    `json:"machineCost,omitempty"`
	MaterialCost      decimal.Decimal     `json:"materialCost"`
}

type Metrics struct {
	Scope   string   `json:"scope"`
	ScopeID types.ID `json:"scopeId"`

	Records []RecordFigures `json:"records"`

	TotalTimeMinutes   decimal.Decimal  `json:"totalTimeMinutes"`
	TotalCharged       decimal.Decimal  `json:"totalCharged"`
	TotalMachineCost   decimal.Decimal  `json:"totalMachineCost"`
	TotalMaterialCost  decimal.Decimal  `json:"totalMaterialCost"`
	Profit             decimal.Decimal  `json:"profit"`
	RealValuePerMinute *decimal.Decimal `json:"realValuePerMinute"`
	Rating             Rating           `json:"rating"`
}

// Classify rates a value per minute. Unfinished batches are in progress whatever the ratio; no time means no rating.
func Classify(realValuePerMinute *decimal.Decimal, allFinished bool) Rating {
	if !allFinished {
		return RatingInProgress
	}
	if realValuePerMinute == nil {
		return RatingUnrated
	}
	switch {
	case realValuePerMinute.LessThan(TargetValuePerMinute.Sub(Tolerance)):
		return RatingPoor
	case realValuePerMinute.GreaterThan(TargetValuePerMinute.Add(Tolerance)):
		return RatingExcellent
	default:
		return RatingOnTarget
	}
}

// Aggregate computes the figures of a batch. Time and machine cost only count finished records;
// charge and material count every record.
func Aggregate(records []domain.ProductionRecord, hourlyRates map[types.ID]decimal.Decimal, now time.Time) *Metrics {
	m := &Metrics{Records: make([]RecordFigures, 0, len(records))}
	var totalActive time.Duration
	allFinished := true
	for i := range records {
		r := &records[i]
		active := ledger.ActiveDuration(r, now)
		f := RecordFigures{
			RecordID:          r.ID,
			Status:            r.Status,
			OperationSequence: r.OperationSequence,
			Quantity:          r.Quantity,
			ActiveMinutes:     ledger.Minutes(active),
			Charged:           ledger.RoundMoney(r.ChargedValue.Mul(decimal.NewFromInt(int64(r.Quantity)))),
			MaterialCost:      ledger.RoundMoney(r.MaterialCost),
		}
		if perPiece, ok := ledger.TimePerPiece(r, now); ok {
			f.MinutesPerPiece = &perPiece
		}
		if cost, ok := ledger.MachineCost(r, hourlyRates[r.OperationID], now); ok {
			f.MachineCost = &cost
			m.TotalMachineCost = m.TotalMachineCost.Add(cost)
		}
		if r.Status == domain.StatusFinished {
			totalActive += active
		} else {
			allFinished = false
		}
		m.TotalCharged = m.TotalCharged.Add(f.Charged)
		m.TotalMaterialCost = m.TotalMaterialCost.Add(f.MaterialCost)
		m.Records = append(m.Records, f)
	}

	m.TotalTimeMinutes = ledger.Minutes(totalActive)
	m.Profit = m.TotalCharged.Sub(m.TotalMachineCost).Sub(m.TotalMaterialCost)
	if exact := ledger.ExactMinutes(totalActive); exact.IsPositive() {
		v := ledger.RoundMoney(m.TotalCharged.Div(exact))
		m.RealValuePerMinute = &v
	}
	m.Rating = Classify(m.RealValuePerMinute, allFinished)
	return m
}

func RecordMetrics(ctx context.Context, id types.ID, now time.Time) (*Metrics, error) {
	return metricsOf(ctx, ScopeRecord, id, now, func(tx *gorm.DB) ([]domain.ProductionRecord, error) {
		var records []domain.ProductionRecord
		if err := tx.Where("id = ?", id).Find(&records).Error; err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("production record %d: %w", id, bizerror.ErrNotFound)
		}
		return records, nil
	})
}

func GroupMetrics(ctx context.Context, id types.ID, now time.Time) (*Metrics, error) {
	return metricsOf(ctx, ScopeGroup, id, now, func(tx *gorm.DB) ([]domain.ProductionRecord, error) {
		if err := tx.Where("id = ?", id).First(&domain.ProductionGroup{}).Error; err != nil {
			if persistence.IsNotFound(err) {
				return nil, fmt.Errorf("production group %d: %w", id, bizerror.ErrNotFound)
			}
			return nil, err
		}
		var records []domain.ProductionRecord
		err := tx.Where("group_id = ?", id).Order("operation_sequence ASC").Find(&records).Error
		return records, err
	})
}

func ProjectMetrics(ctx context.Context, id types.ID, now time.Time) (*Metrics, error) {
	return metricsOf(ctx, ScopeProject, id, now, func(tx *gorm.DB) ([]domain.ProductionRecord, error) {
		if err := tx.Where("id = ?", id).First(&domain.Project{}).Error; err != nil {
			if persistence.IsNotFound(err) {
				return nil, fmt.Errorf("project %d: %w", id, bizerror.ErrNotFound)
			}
			return nil, err
		}
		var records []domain.ProductionRecord
		err := tx.Where("project_id = ?", id).Order("operation_sequence ASC").Find(&records).Error
		return records, err
	})
}

// CompanyMetrics covers every record whose part belongs to the company.
func CompanyMetrics(ctx context.Context, companyID types.ID, now time.Time) (*Metrics, error) {
	return metricsOf(ctx, ScopeCompany, companyID, now, func(tx *gorm.DB) ([]domain.ProductionRecord, error) {
		var partIDs []types.ID
		if err := tx.Model(&domain.Part{}).Where("company_id = ?", companyID).Pluck("id", &partIDs).Error; err != nil {
			return nil, err
		}
		var records []domain.ProductionRecord
		if len(partIDs) == 0 {
			return records, nil
		}
		err := tx.Where("part_id IN (?)", partIDs).Order("start_time ASC").Find(&records).Error
		return records, err
	})
}

// metricsOf reads the batch and its rates in one transaction so no record is seen half-way through a transition.
func metricsOf(ctx context.Context, scope string, id types.ID, now time.Time,
	load func(tx *gorm.DB) ([]domain.ProductionRecord, error)) (*Metrics, error) {

	var records []domain.ProductionRecord
	rates := map[types.ID]decimal.Decimal{}
	err := persistence.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		if records, err = load(tx); err != nil {
			return err
		}
		for _, r := range records {
			if _, found := rates[r.OperationID]; found {
				continue
			}
			op, err := catalog.DetailOperation(tx, r.OperationID)
			if err != nil {
				return err
			}
			rates[r.OperationID] = op.MachineHourlyRate
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m := Aggregate(records, rates, now)
	m.Scope, m.ScopeID = scope, id
	return m, nil
}
