package http

import (
	"github.com/gin-gonic/gin"
)

// envelope es la forma común de toda respuesta: {success, result, error}.
type envelope struct {
	Success bool `json:"success"`
	Result  any  `json:"result"`
	Error   any  `json:"error"`
}

func respondOK(c *gin.Context, status int, result any) {
	if result == nil {
		result = gin.H{}
	}
	c.JSON(status, envelope{Success: true, Result: result, Error: false})
}

func respondError(c *gin.Context, status int, message string, result any) {
	if result == nil {
		result = gin.H{}
	}
	c.JSON(status, envelope{Success: false, Result: result, Error: message})
}

func abortError(c *gin.Context, status int, message string) {
	respondError(c, status, message, nil)
	c.Abort()
}
