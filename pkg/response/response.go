package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/pkg/logger"
)

// ErrorBody 非校验类错误的统一结构
type ErrorBody struct {
	Error string `json:"error"`
}

const (
	MsgNotFound       = "Not found."
	MsgNoPermission   = "You do not have permission to perform this action."
	MsgInternalServer = "internal server error"
)

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// NoContent 204，无响应体
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{Error: msg})
}

// ValidationFailed 400，body 为 字段 -> 错误信息列表
func ValidationFailed(c *gin.Context, fields map[string][]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, fields)
}

func Unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorBody{Error: msg})
}

func Forbidden(c *gin.Context, msg string) {
	if msg == "" {
		msg = MsgNoPermission
	}
	c.AbortWithStatusJSON(http.StatusForbidden, ErrorBody{Error: msg})
}

func NotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, ErrorBody{Error: MsgNotFound})
}

// InternalError 记录错误并返回 500；错误详情不外泄
func InternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	logger.Error("internal error",
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody{Error: MsgInternalServer})
}
