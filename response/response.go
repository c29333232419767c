// Package response writes JSON bodies and the shared error envelope.
package response

import (
	"course-management-backend/apierr"

	"github.com/gin-gonic/gin"
)

type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

func JSON(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// Error aborts the request with the status and envelope for err. The underlying
// error is attached to the gin context so the request logger can report it.
func Error(c *gin.Context, err error) {
	e := apierr.As(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(e.Status(), ErrorEnvelope{Error: ErrorBody{Message: e.Error(), Code: e.Code()}})
}
