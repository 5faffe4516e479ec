package handler

import "github.com/gin-gonic/gin"

// errorResponse sends a JSON error response with {error: message} format
// matching the viewer's expected error format.
func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
