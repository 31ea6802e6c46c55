package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/internal/permission"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/internal/validation"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

// Pinger 健康检查依赖
type Pinger func(ctx context.Context) error

type Handler struct {
	postService    service.PostService
	commentService service.CommentService
	authService    service.AuthService
	ping           Pinger
}

func New(postService service.PostService, commentService service.CommentService, authService service.AuthService, ping Pinger) *Handler {
	return &Handler{
		postService:    postService,
		commentService: commentService,
		authService:    authService,
		ping:           ping,
	}
}

// fail 把服务层错误映射为 HTTP 响应
func fail(c *gin.Context, err error) {
	var verrs validation.Errors
	var denied *permission.DeniedError
	switch {
	case errors.As(err, &verrs):
		response.ValidationFailed(c, verrs)
	case errors.As(err, &denied):
		response.Forbidden(c, denied.Reason)
	case errors.Is(err, service.ErrPostNotFound), errors.Is(err, service.ErrCommentNotFound):
		response.NotFound(c)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

// pathID 非数字 ID 与不存在的 ID 一样按 404 处理
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.NotFound(c)
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.BadRequest(c, "JSON parse error - "+err.Error())
		return false
	}
	return true
}
