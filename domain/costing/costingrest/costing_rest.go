package costingrest

import (
	"context"
	"net/http"
	"shopfloor/common"
	"shopfloor/domain/costing"
	"shopfloor/servehttp"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

func RegisterCostingRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1", middleWares...)
	g.GET("production-records/:id/metrics", metricsHandler(func() metricsFunc { return costing.RecordMetricsFunc }))
	g.GET("production-groups/:id/metrics", metricsHandler(func() metricsFunc { return costing.GroupMetricsFunc }))
	g.GET("projects/:id/metrics", metricsHandler(func() metricsFunc { return costing.ProjectMetricsFunc }))
	g.GET("companies/:id/metrics", metricsHandler(func() metricsFunc { return costing.CompanyMetricsFunc }))
}

type metricsFunc func(ctx context.Context, id types.ID, now time.Time) (*costing.Metrics, error)

// the lookup is deferred to request time so replaced funcs are honoured
func metricsHandler(lookup func() metricsFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := servehttp.MustParseID(c, "id")
		m, err := lookup()(c.Request.Context(), id, common.NowFunc())
		if err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, m)
	}
}
