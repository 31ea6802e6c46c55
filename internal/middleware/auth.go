package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/internal/auth"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/permission"
	"github.com/d60-Lab/gin-blog/pkg/logger"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

const (
	ctxKeyUser   = "auth.user"
	ctxKeyClaims = "auth.claims"
)

// Authenticator 把 bearer token 解析为用户
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, *auth.Claims, error)
}

// Identity 解析 Authorization 头。缺失或无效的 token 视为匿名请求，交给后续的写权限检查处理。
func Identity(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			logger.Debug("malformed authorization header", zap.String("path", c.Request.URL.Path))
			c.Next()
			return
		}
		user, claims, err := a.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			logger.Debug("token rejected", zap.Error(err))
			c.Next()
			return
		}
		c.Set(ctxKeyUser, user)
		c.Set(ctxKeyClaims, claims)
		c.Next()
	}
}

// CurrentUser 返回当前用户；匿名请求返回 nil
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(ctxKeyUser); ok {
		if u, ok := v.(*model.User); ok {
			return u
		}
	}
	return nil
}

func CurrentClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ctxKeyClaims); ok {
		if cl, ok := v.(*auth.Claims); ok {
			return cl
		}
	}
	return nil
}

// RequireWriteIdentity 写权限闸门：非安全方法必须带有效身份，否则 403
func RequireWriteIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := permission.CanWrite(CurrentUser(c), c.Request.Method); err != nil {
			response.Forbidden(c, permission.ReasonNotAuthenticated)
			return
		}
		c.Next()
	}
}
