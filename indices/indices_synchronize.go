package indices

import (
	"context"
	"fmt"
	"shopfloor/client/es"
	"shopfloor/common"
	"shopfloor/domain"
	"shopfloor/domain/production"
	"shopfloor/event"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	RecordIndexEventHandlerName = "productionRecordIndexer"

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

// ScheduleNewSyncRun starts a full sync in background, false if one is already running.
func ScheduleNewSyncRun() bool {
	lock.Lock()
	if running {
		lock.Unlock()
		return false
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		if err := IndicesFullSyncFunc(context.Background()); err != nil {
			logrus.Errorf("indices fully sync: %v", err)
		}
	}()
	waitRunning.Wait()
	return true
}

var (
	SyncBatchSize = 500
	// SyncLimiter throttles full sync pages so a rebuild does not starve request traffic.
	SyncLimiter = rate.NewLimiter(rate.Limit(2), 1)
)

func IndicesFullSync(ctx context.Context) (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	page := 1
	for {
		if err := SyncLimiter.Wait(ctx); err != nil {
			return err
		}

		records, err := production.LoadRecordsFunc(ctx, page, SyncBatchSize)
		if err != nil {
			logrus.Warnf("indices fully sync: error on retrive records(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			page++
			continue
		}

		if len(records) == 0 {
			logrus.Infof("indices fully sync: there are no more records to index")
			return nil
		}

		now := common.NowFunc()
		details := make([]domain.RecordDetail, 0, len(records))
		for _, r := range records {
			detail, err := production.DetailRecordFunc(ctx, r.ID, now)
			if err != nil {
				logrus.Warnf("indices fully sync: detail record %d: %v", r.ID, err)
				continue
			}
			details = append(details, *detail)
		}

		if err := IndexRecords(ctx, details); err != nil {
			logrus.Warnf("indices fully sync: error on index records(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
		page++
	}
}

func IndexRecordEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != event.SourceTypeProductionRecord {
		return nil
	}

	ctx := context.Background()
	if e.EventCategory == event.EventCategoryDeleted {
		if err := es.DeleteDocumentByIdFunc(ctx, ProductionRecordIndexName, e.SourceId); err != nil {
			return &event.EventHandleResult{
				Message:           fmt.Sprintf("delete production record index %d, %v", e.SourceId, err),
				HandlerIdentifier: RecordIndexEventHandlerName,
			}
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: RecordIndexEventHandlerName}
	}

	detail, err := production.DetailRecordFunc(ctx, e.SourceId, common.NowFunc())
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail production record %d, %v", e.SourceId, err),
			HandlerIdentifier: RecordIndexEventHandlerName,
		}
	}
	if err := IndexRecords(ctx, []domain.RecordDetail{*detail}); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index production record %d, %v", e.SourceId, err),
			HandlerIdentifier: RecordIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: RecordIndexEventHandlerName}
}
