package indices

import (
	"context"
	"fmt"
	"shopfloor/client/es"
	"shopfloor/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	ProductionRecordIndexName = "production_records"
)

// RecordDocument is the searchable projection of a production record, ledger figures included.
type RecordDocument struct {
	domain.RecordDetail
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexRecords(ctx context.Context, details []domain.RecordDetail) error {
	docs := make([]RecordDocument, 0, len(details))
	for _, detail := range details {
		docs = append(docs, RecordDocument{RecordDetail: detail})
	}

	if err := saveRecordDocuments(ctx, docs); err != nil {
		return err
	}
	return nil
}

func saveRecordDocuments(ctx context.Context, docs []RecordDocument) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range docs {
		if err := es.IndexFunc(ctx, ProductionRecordIndexName, doc.ID, doc); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index production record %d: %v", doc.ID, err)
		} else {
			logrus.Debugf("index production record %d successfully", doc.ID)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
