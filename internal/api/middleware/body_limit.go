package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for boundaries and part headers around the file.
const multipartOverhead = 64 * 1024

// UploadBodyLimit caps upload request bodies at maxBytes of file content.
// Requests announcing a larger body are rejected with the same 422
// validation shape the upload handler uses, before the body is read.
func UploadBodyLimit(maxBytes int64) gin.HandlerFunc {
	limit := maxBytes + multipartOverhead
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			msg := fmt.Sprintf("The image must not be greater than %d kilobytes.", maxBytes/1024)
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
				"message": msg,
				"errors":  gin.H{"image": []string{msg}},
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
