package sequencingrest

import (
	"net/http"
	"shopfloor/bizerror"
	"shopfloor/common"
	"shopfloor/domain"
	"shopfloor/domain/sequencing"
	"shopfloor/servehttp"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathProjects         = "/v1/projects"
	PathProductionGroups = "/v1/production-groups"
)

func RegisterSequencingRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	p := r.Group(PathProjects, middleWares...)
	p.POST("", handleCreateProject)
	p.GET(":id", handleDetailProject)
	p.DELETE(":id", handleDeleteProject)
	p.POST(":id/finalizations", handleFinalizeProject)
	p.POST(":id/reopenings", handleReopenProject)
	p.POST(":id/reversions", handleRevertLastOperation)

	g := r.Group(PathProductionGroups, middleWares...)
	g.POST("", handleGroupUngrouped)
	g.DELETE(":id", handleDeleteGroup)
}

func handleCreateProject(c *gin.Context) {
	creation := domain.ProjectCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	project, err := sequencing.CreateProjectFunc(c.Request.Context(), &creation, common.NowFunc())
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, project)
}

func handleDetailProject(c *gin.Context) {
	detail, err := sequencing.DetailProjectFunc(c.Request.Context(), servehttp.MustParseID(c, "id"))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleDeleteProject(c *gin.Context) {
	if err := sequencing.DeleteProjectFunc(c.Request.Context(), servehttp.MustParseID(c, "id"), common.NowFunc()); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleFinalizeProject(c *gin.Context) {
	project, err := sequencing.FinalizeProjectFunc(c.Request.Context(), servehttp.MustParseID(c, "id"), common.NowFunc())
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, project)
}

func handleReopenProject(c *gin.Context) {
	project, err := sequencing.ReopenProjectFunc(c.Request.Context(), servehttp.MustParseID(c, "id"), common.NowFunc())
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, project)
}

func handleRevertLastOperation(c *gin.Context) {
	result, err := sequencing.RevertLastOperationFunc(c.Request.Context(), servehttp.MustParseID(c, "id"), common.NowFunc())
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func handleGroupUngrouped(c *gin.Context) {
	grouping := domain.ProductionGrouping{}
	if err := c.ShouldBindBodyWith(&grouping, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	result, err := sequencing.GroupUngroupedFunc(c.Request.Context(), grouping.PartCode, common.NowFunc())
	if err != nil {
		panic(err)
	}
	status := http.StatusOK
	if result.Status == domain.GroupingStatusGrouped {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

func handleDeleteGroup(c *gin.Context) {
	if err := sequencing.DeleteGroupFunc(c.Request.Context(), servehttp.MustParseID(c, "id"), common.NowFunc()); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
