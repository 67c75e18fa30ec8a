package middleware

import (
	"github.com/gin-gonic/gin"
	ierr "github.com/milkround/milkround/internal/errors"
)

// ErrorHandler translates the last error a handler attached into the
// standard error envelope with the mapped HTTP status
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		c.JSON(ierr.HTTPStatusFromErr(err), ierr.NewErrorResponse(err))
	}
}
