package response

import (
	"github.com/gin-gonic/gin"
)

// JSON writes a successful response. Entities and arrays are rendered
// directly, without an envelope, so clients get the resource as-is.
func JSON(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

// NoContent writes an empty 204-style response.
func NoContent(c *gin.Context, status int) {
	c.Status(status)
}

// Error writes the error shape shared by every endpoint.
func Error(c *gin.Context, status int, errorCode string, message string, details any) {
	body := gin.H{
		"code":    errorCode,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, body)
}
