package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/nutritracker/internal"
	"github.com/yourname/nutritracker/internal/response"
)

// statusFor maps a domain error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, internal.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, internal.ErrNotFound), errors.Is(err, internal.ErrNoPlan):
		return http.StatusNotFound
	case errors.Is(err, internal.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, internal.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, internal.ErrGenerationInProgress):
		return http.StatusConflict
	case errors.Is(err, internal.ErrUpstream), errors.Is(err, internal.ErrEmptyCompletion), errors.Is(err, internal.ErrMalformedCompletion):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// HandleError logs err with the request id and writes the error envelope.
// Domain errors carry a message meant for the user and are sent as is;
// anything else is reported as msg plus the cause.
func HandleError(c *gin.Context, logger internal.Logger, err error, msg string) {
	requestID := c.GetString("request_id")
	status := statusFor(err)
	text := err.Error()
	if status == http.StatusInternalServerError {
		text = msg + ": " + err.Error()
		logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	} else {
		logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
	}
	var resp response.APIResponse
	switch status {
	case http.StatusBadRequest:
		resp = response.BadRequest(text)
	case http.StatusNotFound:
		resp = response.NotFound(text)
	case http.StatusConflict:
		resp = response.Conflict(text)
	case http.StatusInternalServerError:
		resp = response.InternalError(text)
	default:
		resp = response.NewAppError(status, text)
	}
	c.JSON(status, resp)
}

// bindJSON decodes the body into dst, answering 400 on failure.
func bindJSON(c *gin.Context, logger internal.Logger, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		HandleError(c, logger, internal.Wrap(internal.ErrValidation, "Invalid JSON: "+err.Error()), "Invalid JSON")
		return false
	}
	return true
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Debugf("[request_id=%s] Success", requestID)
	c.JSON(http.StatusOK, response.Success(data, meta))
}

func userID(c *gin.Context) string {
	return c.MustGet("user").(*internal.User).ID
}
