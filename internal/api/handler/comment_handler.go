package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/internal/dto"
	"github.com/d60-Lab/gin-blog/internal/middleware"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

const ctxKeyComment = "handler.comment"

// ListComments 帖子下的评论
// @Summary 评论列表（按时间正序）
// @Tags 评论
// @Produce json
// @Param post_id path int true "帖子ID"
// @Success 200 {array} dto.CommentView
// @Failure 404 {object} response.ErrorBody
// @Router /posts/{post_id}/comments/ [get]
func (h *Handler) ListComments(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	list, err := h.commentService.ListByPost(c.Request.Context(), postID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}

// CreateComment 发表评论
// @Summary 发表评论
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post_id path int true "帖子ID"
// @Param request body dto.CommentInput true "评论内容"
// @Success 201 {object} dto.CommentView
// @Failure 400 {object} map[string][]string
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /posts/{post_id}/comments/ [post]
func (h *Handler) CreateComment(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.commentService.RequirePost(c.Request.Context(), postID); err != nil {
		fail(c, err)
		return
	}
	var in dto.CommentInput
	if !bindJSON(c, &in) {
		return
	}
	comment, err := h.commentService.Create(c.Request.Context(), middleware.CurrentUser(c), postID, in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, comment)
}

// AuthorizeComment 在分派 PUT/DELETE 之前统一做查找与作者校验
func (h *Handler) AuthorizeComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	comment, err := h.commentService.Authorize(c.Request.Context(), middleware.CurrentUser(c), id, c.Request.Method)
	if err != nil {
		fail(c, err)
		return
	}
	c.Set(ctxKeyComment, comment)
	c.Next()
}

func authorizedComment(c *gin.Context) *model.Comment {
	return c.MustGet(ctxKeyComment).(*model.Comment)
}

// UpdateComment 修改评论
// @Summary 修改评论（仅作者）
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "评论ID"
// @Param request body dto.CommentInput true "评论内容"
// @Success 200 {object} dto.CommentView
// @Failure 400 {object} map[string][]string
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /comments/{id}/ [put]
func (h *Handler) UpdateComment(c *gin.Context) {
	var in dto.CommentInput
	if !bindJSON(c, &in) {
		return
	}
	comment, err := h.commentService.Update(c.Request.Context(), authorizedComment(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, comment)
}

// DeleteComment 删除评论
// @Summary 删除评论（仅作者）
// @Tags 评论
// @Security BearerAuth
// @Param id path int true "评论ID"
// @Success 204
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /comments/{id}/ [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	if err := h.commentService.Delete(c.Request.Context(), authorizedComment(c)); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}
