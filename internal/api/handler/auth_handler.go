package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/internal/dto"
	"github.com/d60-Lab/gin-blog/internal/middleware"
	"github.com/d60-Lab/gin-blog/pkg/logger"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

// Register 注册
// @Summary 注册账号
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body dto.RegisterInput true "账号信息"
// @Success 201 {object} dto.UserSummary
// @Failure 400 {object} map[string][]string
// @Router /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in dto.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.authService.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, user)
}

// Login 登录，返回 bearer token
// @Summary 登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body dto.LoginInput true "用户名与密码"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} map[string][]string
// @Failure 401 {object} response.ErrorBody
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in dto.LoginInput
	if !bindJSON(c, &in) {
		return
	}
	tok, err := h.authService.Login(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, tok)
}

// Logout 注销当前 token
// @Summary 注销
// @Tags 认证
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} response.ErrorBody
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.CurrentClaims(c)); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}

// Health 存活检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			logger.Error("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}
