package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse is the envelope every JSON answer uses.
type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= http.StatusOK && code < http.StatusMultipleChoices,
		Message: message,
		Data:    data,
	})
}

// RespondError writes the error envelope and stops the handler chain, so
// middlewares can call it directly.
func RespondError(c *gin.Context, code int, err error) {
	message := http.StatusText(code)
	if err != nil {
		message = err.Error()
	}
	c.AbortWithStatusJSON(code, JSONResponse{
		Status:  false,
		Message: message,
	})
}
