package utils

import "github.com/gin-gonic/gin"

// JSONError writes the error envelope every endpoint uses.
func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"status": "error", "message": message})
}

// JSONErrorDetails is JSONError with the underlying error text attached.
func JSONErrorDetails(c *gin.Context, code int, message string, err error) {
	body := gin.H{"status": "error", "message": message}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(code, body)
}

func JSONMessage(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"status": "success", "message": message})
}
