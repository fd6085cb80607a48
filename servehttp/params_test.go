package servehttp_test

import (
	"net/http"
	"shopfloor/bizerror"
	"shopfloor/servehttp"
	"shopfloor/testinfra"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestMustParseID(t *testing.T) {
	RegisterTestingT(t)

	router := gin.New()
	router.Use(bizerror.ErrorHandling())
	router.GET("/things/:id", func(c *gin.Context) {
		c.String(http.StatusOK, servehttp.MustParseID(c, "id").String())
	})

	t.Run("should parse numeric ids", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/things/123", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(Equal("123"))
	})

	t.Run("should reject malformed ids", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/things/abc", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"invalid id 'abc'","data":null}`))
	})
}
