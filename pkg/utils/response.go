package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every body is an envelope: {"success": true, "data": ...} or {"success": false, "error": ...}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// ListResponse wraps items under key with their count; a nil slice is sent as []
func ListResponse[T any](c *gin.Context, key string, items []T) {
	if items == nil {
		items = []T{}
	}
	SuccessResponse(c, gin.H{
		key:     items,
		"count": len(items),
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   message,
	})
}

// AbortWithError answers like ErrorResponse and stops the handler chain
func AbortWithError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"success": false,
		"error":   message,
	})
}

func MessageResponse(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}
