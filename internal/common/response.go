package common

import "github.com/gin-gonic/gin"

// OK writes the success envelope.
func OK(c *gin.Context, data any) {
	c.JSON(200, gin.H{
		"success": true,
		"data":    data,
	})
}

// Fail writes the failure envelope.
func Fail(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{
		"success": false,
		"error":   msg,
	})
}

// FailDetails writes the failure envelope with an additional details string,
// typically the underlying error message.
func FailDetails(c *gin.Context, httpStatus int, msg, details string) {
	c.JSON(httpStatus, gin.H{
		"success": false,
		"error":   msg,
		"details": details,
	})
}
