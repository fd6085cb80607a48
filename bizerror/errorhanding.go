package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

var sentinelResponds = []struct {
	err    error
	status int
	code   string
}{
	{ErrInvalidState, http.StatusConflict, "production.invalid_state"},
	{ErrAlreadyFinished, http.StatusConflict, "production.already_finished"},
	{ErrNoOpenPause, http.StatusConflict, "production.no_open_pause"},
	{ErrHasActiveRecords, http.StatusConflict, "project.has_active_records"},
	{ErrNotFinished, http.StatusConflict, "project.not_finished"},
	{ErrNothingToRevert, http.StatusConflict, "project.nothing_to_revert"},
	{ErrMissingOperation, http.StatusBadRequest, "production.missing_operation"},
	{ErrMissingArgument, http.StatusBadRequest, "common.missing_argument"},
}

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = fmt.Errorf("%v", ret)
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

func HandleError(c *gin.Context, err error) {
	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	var bizErr BizError
	if errors.As(genericErr, &bizErr) {
		logrus.Warn(err)
		respond := bizErr.Respond()
		if respond.Status == http.StatusServiceUnavailable {
			c.Header("Retry-After", "1")
		}
		c.JSON(respond.Status, &ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		c.Abort()
		return
	}

	// bad request:  io.EOF (no body).
	if errors.Is(genericErr, io.EOF) {
		c.JSON(http.StatusBadRequest, &ErrorBody{Code: "bad_request.body_not_found", Message: "body not found"})
		c.Abort()
		return
	}
	var syntaxErr *json.SyntaxError
	if errors.As(genericErr, &syntaxErr) {
		c.JSON(http.StatusBadRequest, &ErrorBody{Code: "bad_request.invalid_body_format", Message: "invalid body format", Data: syntaxErr.Error()})
		c.Abort()
		return
	}
	var validationErr validator.ValidationErrors
	if errors.As(genericErr, &validationErr) {
		c.JSON(http.StatusBadRequest, &ErrorBody{Code: "bad_request.validation_failed", Message: "validation failed", Data: validationErr.Error()})
		c.Abort()
		return
	}

	if errors.Is(genericErr, gorm.ErrRecordNotFound) || errors.Is(genericErr, ErrNotFound) {
		c.JSON(http.StatusNotFound, &ErrorBody{Code: "common.record_not_found", Message: "record not found"})
		c.Abort()
		return
	}
	for _, r := range sentinelResponds {
		if errors.Is(genericErr, r.err) {
			logrus.Warn(err)
			c.JSON(r.status, &ErrorBody{Code: r.code, Message: r.err.Error()})
			c.Abort()
			return
		}
	}

	logrus.Error(err)
	c.JSON(http.StatusInternalServerError, &ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
	c.Abort()
}
