package indices

import (
	"net/http"
	"shopfloor/client/es"
	"shopfloor/servehttp"

	"github.com/gin-gonic/gin"
)

var (
	PathIndexRequests            = "/v1/index-requests"
	PathIndexedProductionRecords = "/v1/indices/production-records"
)

func RegisterIndicesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathIndexRequests, middleWares...)
	g.POST("", handleIndexRequest)

	docs := r.Group(PathIndexedProductionRecords, middleWares...)
	docs.GET("/:id", handleGetIndexedRecord)
}

func handleIndexRequest(c *gin.Context) {
	if ScheduleNewSyncRunFunc() {
		c.JSON(http.StatusAccepted, gin.H{"result": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": false})
}

// handleGetIndexedRecord returns the projection as stored in the index, which may lag the database.
func handleGetIndexedRecord(c *gin.Context) {
	id := servehttp.MustParseID(c, "id")
	source, err := es.GetDocumentFunc(c.Request.Context(), ProductionRecordIndexName, id)
	if err != nil {
		panic(err)
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(source))
}
