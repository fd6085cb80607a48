package productionrest

import (
	"net/http"
	"shopfloor/bizerror"
	"shopfloor/common"
	"shopfloor/domain"
	"shopfloor/domain/production"
	"shopfloor/servehttp"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathProductionRecords = "/v1/production-records"
	PathAbsences          = "/v1/absences"
)

func RegisterProductionRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathProductionRecords, middleWares...)
	g.POST("", handleStart)
	g.GET(":id", handleDetail)
	g.POST(":id/pauses", handlePause)
	g.POST(":id/resumptions", handleResume)
	g.POST(":id/finishes", handleFinish)
	g.POST(":id/continuations", handleContinue)

	a := r.Group(PathAbsences, middleWares...)
	a.GET("", handleQueryAbsences)
}

func handleStart(c *gin.Context) {
	creation := domain.ProductionStart{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := production.StartFunc(c.Request.Context(), &creation, common.NowFunc())
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleDetail(c *gin.Context) {
	id := servehttp.MustParseID(c, "id")
	detail, err := production.DetailRecordFunc(c.Request.Context(), id, common.NowFunc())
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handlePause(c *gin.Context) {
	id := servehttp.MustParseID(c, "id")
	p := domain.ProductionPause{}
	if err := c.ShouldBindBodyWith(&p, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := production.PauseFunc(c.Request.Context(), id, p.Reason, common.NowFunc())
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleResume(c *gin.Context) {
	id := servehttp.MustParseID(c, "id")
	record, err := production.ResumeFunc(c.Request.Context(), id, common.NowFunc())
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleFinish(c *gin.Context) {
	id := servehttp.MustParseID(c, "id")
	f := domain.ProductionFinish{}
	// the body is optional
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindBodyWith(&f, binding.JSON); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
	}
	record, err := production.FinishFunc(c.Request.Context(), id, f.ChargedValue, common.NowFunc())
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleContinue(c *gin.Context) {
	id := servehttp.MustParseID(c, "id")
	continuation := domain.ProductionContinuation{}
	if err := c.ShouldBindBodyWith(&continuation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	result, err := production.ContinueToNextOperationFunc(c.Request.Context(), id, &continuation, common.NowFunc())
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}

func handleQueryAbsences(c *gin.Context) {
	query := domain.AbsenceQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	absences, err := production.QueryAbsencesFunc(c.Request.Context(), query.RecordIDs)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, absences)
}
