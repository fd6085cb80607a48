package servehttp

import (
	"errors"
	"shopfloor/bizerror"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// MustParseID reads a path parameter as an id, panicking with a bad param error the middleware renders as 400.
func MustParseID(c *gin.Context, name string) types.ID {
	id, err := types.ParseID(c.Param(name))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid " + name + " '" + c.Param(name) + "'")})
	}
	return id
}
