package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"course-management-backend/apierr"
	"course-management-backend/authz"
	"course-management-backend/middleware"
	"course-management-backend/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// Report JSON field names in validation messages.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindJSON decodes the body into dst and writes a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, bindError(err))
		return false
	}
	return true
}

func bindError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fieldMessage(fe))
		}
		return apierr.Validation("%s", strings.Join(msgs, "; "))
	}
	return apierr.Validation("invalid request body: %v", err)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// pathID parses a positive numeric path parameter, writing a 400 otherwise.
func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.Error(c, apierr.Validation("invalid %s %q", name, raw))
		return 0, false
	}
	return uint(id), true
}

func identity(c *gin.Context) (authz.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, apierr.Unauthorized("authentication required"))
	}
	return id, ok
}
