package testinfra

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"shopfloor/domain"
	"shopfloor/domain/catalog"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *http.Response) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	result := w.Result()
	defer result.Body.Close()

	bodyBytes, err := io.ReadAll(result.Body)
	if err != nil {
		panic(err)
	}
	return result.StatusCode, string(bodyBytes), result
}

// BuildPart creates a part in the active data source.
func BuildPart(companyID types.ID, code string) *domain.Part {
	part, err := catalog.CreatePart(context.Background(), &domain.PartCreation{CompanyID: companyID, Code: code, Description: code + " part"})
	Expect(err).To(BeNil())
	return part
}

// BuildOperation creates an operation in the active data source.
func BuildOperation(name string, hourlyRate string) *domain.Operation {
	op, err := catalog.CreateOperation(context.Background(),
		&domain.OperationCreation{Name: name, MachineHourlyRate: decimal.RequireFromString(hourlyRate)})
	Expect(err).To(BeNil())
	return op
}
