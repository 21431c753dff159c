package middleware

import (
	"log"
	"net/http"

	"github.com/complyops/backoffice/common"
	"github.com/gin-gonic/gin"
)

// ErrorHandler turns errors attached via c.Error into JSON responses.
// APIError carries its own status; anything else is logged and masked
// as a plain 500 so repo errors never leak into responses.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		if apiErr, ok := err.(common.APIError); ok {
			response := gin.H{"error": apiErr.Message}
			if apiErr.Fields != nil {
				response["fields"] = apiErr.Fields
			}
			c.JSON(apiErr.Status, response)
			return
		}

		log.Printf("[API][ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
