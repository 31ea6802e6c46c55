package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/internal/dto"
	"github.com/d60-Lab/gin-blog/internal/middleware"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

const ctxKeyPost = "handler.post"

// ListPosts 帖子列表
// @Summary 帖子列表（按创建时间倒序）
// @Tags 帖子
// @Produce json
// @Success 200 {array} dto.PostListItem
// @Failure 500 {object} response.ErrorBody
// @Router /posts/ [get]
func (h *Handler) ListPosts(c *gin.Context) {
	list, err := h.postService.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

// CreatePost 发帖
// @Summary 发帖（作者为当前用户）
// @Tags 帖子
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PostInput true "帖子内容"
// @Success 201 {object} dto.PostDetail
// @Failure 400 {object} map[string][]string
// @Failure 403 {object} response.ErrorBody
// @Router /posts/ [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var in dto.PostInput
	if !bindJSON(c, &in) {
		return
	}
	post, err := h.postService.Create(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, post)
}

// GetPost 帖子详情
// @Summary 帖子详情（含评论，按时间正序）
// @Tags 帖子
// @Produce json
// @Param id path int true "帖子ID"
// @Success 200 {object} dto.PostDetail
// @Failure 404 {object} response.ErrorBody
// @Router /posts/{id}/ [get]
func (h *Handler) GetPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	post, err := h.postService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, post)
}

// AuthorizePost 在读取请求体之前做查找与作者校验（404 先于 403，二者先于 400）
func (h *Handler) AuthorizePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	post, err := h.postService.Authorize(c.Request.Context(), middleware.CurrentUser(c), id, c.Request.Method)
	if err != nil {
		fail(c, err)
		return
	}
	c.Set(ctxKeyPost, post)
	c.Next()
}

func authorizedPost(c *gin.Context) *model.Post {
	return c.MustGet(ctxKeyPost).(*model.Post)
}

// UpdatePost 修改帖子（PUT 全量 / PATCH 部分）
// @Summary 修改帖子（仅作者）
// @Tags 帖子
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "帖子ID"
// @Param request body dto.PostInput true "帖子内容"
// @Success 200 {object} dto.PostDetail
// @Failure 400 {object} map[string][]string
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /posts/{id}/ [put]
// @Router /posts/{id}/ [patch]
func (h *Handler) UpdatePost(c *gin.Context) {
	var in dto.PostInput
	if !bindJSON(c, &in) {
		return
	}
	partial := c.Request.Method == http.MethodPatch
	post, err := h.postService.Update(c.Request.Context(), authorizedPost(c), in, partial)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, post)
}

// DeletePost 删除帖子及其评论
// @Summary 删除帖子（仅作者）
// @Tags 帖子
// @Security BearerAuth
// @Param id path int true "帖子ID"
// @Success 204
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /posts/{id}/ [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	if err := h.postService.Delete(c.Request.Context(), authorizedPost(c)); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}
