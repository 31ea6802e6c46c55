package dto

import (
	"time"

	"github.com/d60-Lab/gin-blog/internal/model"
)

// UserSummary 作者信息
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PostListItem 列表视图
type PostListItem struct {
	ID            uint        `json:"id"`
	Title         string      `json:"title"`
	Author        UserSummary `json:"author"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	CommentsCount int64       `json:"comments_count"`
}

// PostDetail 详情视图（含评论，按时间正序）
type PostDetail struct {
	ID        uint          `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Author    UserSummary   `json:"author"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Comments  []CommentView `json:"comments"`
}

type CommentView struct {
	ID        uint        `json:"id"`
	Content   string      `json:"content"`
	Author    UserSummary `json:"author"`
	CreatedAt time.Time   `json:"created_at"`
}

type TokenResponse struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserSummary `json:"user"`
}

func NewUserSummary(u *model.User) UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}

func NewPostListItem(p *model.Post, commentsCount int64) PostListItem {
	return PostListItem{
		ID:            p.ID,
		Title:         p.Title,
		Author:        NewUserSummary(&p.Author),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		CommentsCount: commentsCount,
	}
}

func NewPostDetail(p *model.Post) PostDetail {
	return PostDetail{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Author:    NewUserSummary(&p.Author),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Comments:  NewCommentViews(p.Comments),
	}
}

func NewCommentView(c *model.Comment) CommentView {
	return CommentView{
		ID:        c.ID,
		Content:   c.Content,
		Author:    NewUserSummary(&c.Author),
		CreatedAt: c.CreatedAt,
	}
}

// NewCommentViews 空切片序列化为 []，不是 null
func NewCommentViews(cs []model.Comment) []CommentView {
	out := make([]CommentView, 0, len(cs))
	for i := range cs {
		out = append(out, NewCommentView(&cs[i]))
	}
	return out
}
