package indices_test

import (
	"context"
	"errors"
	"shopfloor/client/es"
	"shopfloor/domain"
	"shopfloor/domain/production"
	"shopfloor/event"
	"shopfloor/indices"
	"sync"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
	"golang.org/x/time/rate"
)

func TestScheduleNewSyncRun(t *testing.T) {
	RegisterTestingT(t)

	defer func() { indices.IndicesFullSyncFunc = indices.IndicesFullSync }()

	t.Run("only one sync run at a time", func(t *testing.T) {
		indices.IndicesFullSyncFunc = func(ctx context.Context) error {
			time.Sleep(100 * time.Millisecond)
			return nil
		}

		Expect(indices.ScheduleNewSyncRun()).To(BeTrue())
		Expect(indices.ScheduleNewSyncRun()).To(BeFalse())

		time.Sleep(200 * time.Millisecond)
		Expect(indices.ScheduleNewSyncRun()).To(BeTrue())
		time.Sleep(200 * time.Millisecond)
	})

	t.Run("failed run releases the lock", func(t *testing.T) {
		indices.IndicesFullSyncFunc = func(ctx context.Context) error {
			return errors.New("boom")
		}
		Expect(indices.ScheduleNewSyncRun()).To(BeTrue())
		time.Sleep(50 * time.Millisecond)
		Expect(indices.ScheduleNewSyncRun()).To(BeTrue())
		time.Sleep(50 * time.Millisecond)
	})
}

func TestIndicesFullSync(t *testing.T) {
	RegisterTestingT(t)

	indices.SyncLimiter = rate.NewLimiter(rate.Inf, 1)
	batchSize := indices.SyncBatchSize
	indices.SyncBatchSize = 2
	defer func() {
		indices.SyncBatchSize = batchSize
		production.LoadRecordsFunc = production.LoadRecords
		production.DetailRecordFunc = production.DetailRecord
		es.IndexFunc = es.Index
	}()

	t.Run("pages through every record and skips failed pages", func(t *testing.T) {
		pages := map[int][]domain.ProductionRecord{
			1: {{ID: 1}, {ID: 2}},
			3: {{ID: 5}},
		}
		var requested []int
		production.LoadRecordsFunc = func(ctx context.Context, page, pageSize int) ([]domain.ProductionRecord, error) {
			Expect(pageSize).To(Equal(2))
			requested = append(requested, page)
			if page == 2 {
				return nil, errors.New("page error")
			}
			return pages[page], nil
		}
		production.DetailRecordFunc = func(ctx context.Context, id types.ID, now time.Time) (*domain.RecordDetail, error) {
			if id == 2 {
				return nil, errors.New("detail error")
			}
			return &domain.RecordDetail{ProductionRecord: domain.ProductionRecord{ID: id}}, nil
		}
		var mu sync.Mutex
		var indexed []types.ID
		es.IndexFunc = func(ctx context.Context, index string, id types.ID, doc interface{}) error {
			Expect(index).To(Equal(indices.ProductionRecordIndexName))
			mu.Lock()
			defer mu.Unlock()
			indexed = append(indexed, id)
			return nil
		}

		Expect(indices.IndicesFullSync(context.Background())).To(BeNil())
		Expect(requested).To(Equal([]int{1, 2, 3, 4}))
		Expect(indexed).To(Equal([]types.ID{1, 5}))
	})

	t.Run("panic is returned as error", func(t *testing.T) {
		production.LoadRecordsFunc = func(ctx context.Context, page, pageSize int) ([]domain.ProductionRecord, error) {
			panic(errors.New("unexpected"))
		}
		Expect(indices.IndicesFullSync(context.Background())).To(MatchError("unexpected"))
	})

	t.Run("cancelled context stops the sync", func(t *testing.T) {
		indices.SyncLimiter = rate.NewLimiter(rate.Every(time.Hour), 1)
		defer func() { indices.SyncLimiter = rate.NewLimiter(rate.Inf, 1) }()
		production.LoadRecordsFunc = func(ctx context.Context, page, pageSize int) ([]domain.ProductionRecord, error) {
			return []domain.ProductionRecord{{ID: types.ID(page)}}, nil
		}
		production.DetailRecordFunc = func(ctx context.Context, id types.ID, now time.Time) (*domain.RecordDetail, error) {
			return &domain.RecordDetail{ProductionRecord: domain.ProductionRecord{ID: id}}, nil
		}
		es.IndexFunc = func(ctx context.Context, index string, id types.ID, doc interface{}) error { return nil }

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		Expect(indices.IndicesFullSync(ctx)).ToNot(BeNil())
	})
}

func TestIndexRecordEventHandle(t *testing.T) {
	RegisterTestingT(t)

	defer func() {
		production.DetailRecordFunc = production.DetailRecord
		es.IndexFunc = es.Index
		es.DeleteDocumentByIdFunc = es.DeleteDocumentById
	}()

	t.Run("only accept events of production records", func(t *testing.T) {
		Expect(indices.IndexRecordEventHandle(&event.EventRecord{Event: event.Event{SourceType: event.SourceTypeProject}})).To(BeNil())
	})

	t.Run("delete event removes the document", func(t *testing.T) {
		es.DeleteDocumentByIdFunc = func(ctx context.Context, index string, id types.ID) error {
			Expect(index).To(Equal(indices.ProductionRecordIndexName))
			Expect(id).To(Equal(types.ID(100)))
			return nil
		}
		ev := event.EventRecord{Event: event.Event{SourceType: event.SourceTypeProductionRecord, SourceId: 100, EventCategory: event.EventCategoryDeleted}}
		Expect(*indices.IndexRecordEventHandle(&ev)).To(Equal(event.EventHandleResult{
			Success: true, HandlerIdentifier: indices.RecordIndexEventHandlerName,
		}))
	})

	t.Run("delete failure is reported", func(t *testing.T) {
		es.DeleteDocumentByIdFunc = func(ctx context.Context, index string, id types.ID) error {
			return errors.New("error on delete document")
		}
		ev := event.EventRecord{Event: event.Event{SourceType: event.SourceTypeProductionRecord, SourceId: 100, EventCategory: event.EventCategoryDeleted}}
		Expect(*indices.IndexRecordEventHandle(&ev)).To(Equal(event.EventHandleResult{
			HandlerIdentifier: indices.RecordIndexEventHandlerName,
			Message:           "delete production record index 100, error on delete document",
		}))
	})

	t.Run("status event reindexes the detail", func(t *testing.T) {
		production.DetailRecordFunc = func(ctx context.Context, id types.ID, now time.Time) (*domain.RecordDetail, error) {
			return &domain.RecordDetail{ProductionRecord: domain.ProductionRecord{ID: id, Status: domain.StatusPaused}}, nil
		}
		var saved interface{}
		es.IndexFunc = func(ctx context.Context, index string, id types.ID, doc interface{}) error {
			saved = doc
			return nil
		}
		ev := event.EventRecord{Event: event.Event{SourceType: event.SourceTypeProductionRecord, SourceId: 100, EventCategory: event.EventCategoryPropertyUpdated}}
		Expect(indices.IndexRecordEventHandle(&ev).Success).To(BeTrue())
		Expect(saved.(indices.RecordDocument).Status).To(Equal(domain.StatusPaused))
	})

	t.Run("detail failure is reported", func(t *testing.T) {
		production.DetailRecordFunc = func(ctx context.Context, id types.ID, now time.Time) (*domain.RecordDetail, error) {
			return nil, errors.New("gone")
		}
		ev := event.EventRecord{Event: event.Event{SourceType: event.SourceTypeProductionRecord, SourceId: 100, EventCategory: event.EventCategoryCreated}}
		Expect(*indices.IndexRecordEventHandle(&ev)).To(Equal(event.EventHandleResult{
			HandlerIdentifier: indices.RecordIndexEventHandlerName,
			Message:           "detail production record 100, gone",
		}))
	})

	t.Run("index failure is reported", func(t *testing.T) {
		production.DetailRecordFunc = func(ctx context.Context, id types.ID, now time.Time) (*domain.RecordDetail, error) {
			return &domain.RecordDetail{ProductionRecord: domain.ProductionRecord{ID: id}}, nil
		}
		es.IndexFunc = func(ctx context.Context, index string, id types.ID, doc interface{}) error {
			return errors.New("unavailable")
		}
		ev := event.EventRecord{Event: event.Event{SourceType: event.SourceTypeProductionRecord, SourceId: 100, EventCategory: event.EventCategoryCreated}}
		r := indices.IndexRecordEventHandle(&ev)
		Expect(r.Success).To(BeFalse())
		Expect(r.Message).To(Equal("index production record 100, map[100:unavailable]"))
	})
}
