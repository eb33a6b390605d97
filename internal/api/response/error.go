package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is a failure that already knows its HTTP status.
type Error struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Extras  string `json:"extras"`
}

func (e Error) Error() string {
	return e.Extras
}

func NewError(code int, message string) Error {
	return Error{
		Success: false,
		Code:    code,
		Extras:  message,
	}
}

// HandleError writes err with its own status when it is an Error, else 500.
func HandleError(c *gin.Context, err error) {
	var apiErr Error
	if errors.As(err, &apiErr) {
		ErrorResponse(c, apiErr.Code, apiErr.Extras)
		return
	}
	ErrorResponse(c, http.StatusInternalServerError, "internal error")
}
