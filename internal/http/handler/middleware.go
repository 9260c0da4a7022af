// Package handler 提供 HTTP API 的各路由处理器。
package handler

import (
	"net/http"
	"strings"

	"smarttask/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserIDKey   = "auth.user_id"
	ctxUsernameKey = "auth.username"
)

// AuthRequired 校验 Authorization: Bearer 令牌，通过后把用户身份写入请求上下文
func AuthRequired(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		userID, username, err := issuer.Parse(strings.TrimPrefix(header, prefix))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
			return
		}
		c.Set(ctxUserIDKey, userID)
		c.Set(ctxUsernameKey, username)
		c.Next()
	}
}

// CurrentUserID 取出 AuthRequired 写入的用户 ID
func CurrentUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ctxUserIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
