package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("invalid state")
	ErrAlreadyFinished  = errors.New("already finished")
	ErrMissingOperation = errors.New("next operation is required")
	ErrMissingArgument  = errors.New("missing argument")
	ErrHasActiveRecords = errors.New("project has records in progress")
	ErrNotFinished      = errors.New("project is not finished")
	ErrNothingToRevert  = errors.New("no finished operation to revert")
	ErrNoOpenPause      = errors.New("no open pause")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

// ErrTransientStore reports a timeout or connection problem against the database.
// It is the only error a caller may retry.
type ErrTransientStore struct {
	Cause error
}

func (e *ErrTransientStore) Unwrap() error {
	return e.Cause
}
func (e *ErrTransientStore) Error() string {
	if e.Cause != nil {
		return "transient store failure: " + e.Cause.Error()
	}
	return "transient store failure"
}
func (e *ErrTransientStore) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusServiceUnavailable, Code: "common.store_unavailable", Message: e.Error()}
}

func IsRetryable(err error) bool {
	var transient *ErrTransientStore
	return errors.As(err, &transient)
}
