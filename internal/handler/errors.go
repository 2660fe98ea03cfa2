package handler

import (
	"net/http"

	"receipts/internal/apperror"
	"receipts/internal/logging"
	"receipts/internal/middleware"
	"receipts/pkg/response"

	"github.com/gin-gonic/gin"
)

const msgInternal = "Internal server error"

// respondError maps a typed service error onto the response envelope.
// Internal causes are logged and never returned to the client.
func respondError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	msg := apperror.MessageOf(err)

	switch kind {
	case apperror.KindValidation:
		response.Fail(c, http.StatusBadRequest, msg)
	case apperror.KindNotFound:
		response.Fail(c, http.StatusNotFound, msg)
	case apperror.KindConflict:
		response.Fail(c, http.StatusConflict, msg)
	case apperror.KindUnauthenticated:
		middleware.AbortUnauthorized(c, msg)
	default:
		_ = c.Error(err)
		logging.FromContext(c.Request.Context()).Error("request failed", "error", err)
		if msg == "" {
			msg = msgInternal
		}
		response.Fail(c, http.StatusInternalServerError, msg)
	}
}

// respondBindError answers 422 for payloads and queries that do not parse
func respondBindError(c *gin.Context, err error) {
	response.Fail(c, http.StatusUnprocessableEntity, "Invalid request payload: "+err.Error())
}
