package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/affectlab/affectchat/internal/auth"
	"github.com/affectlab/affectchat/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID assigns a request id when the client did not send one, and
// echoes it back on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// Recovery converts panics into the uniform error envelope instead of a bare
// 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered path=%s err=%v", c.FullPath(), r)
				common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
				c.Abort()
			}
		}()
		c.Next()
	}
}

// AdminRequired gates the research dashboard. The token is a JWT issued by
// /admin/login, accepted from the Authorization header or — for browser CSV
// downloads, which cannot set headers — the token query parameter.
func AdminRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			common.Fail(c, http.StatusUnauthorized, 40101, "admin token required")
			c.Abort()
			return
		}
		if err := auth.VerifyAdminJWT(token, secret); err != nil {
			common.Fail(c, http.StatusForbidden, 40301, "invalid admin token")
			c.Abort()
			return
		}
		c.Next()
	}
}
