package dto

// PostInput 创建/更新帖子；author 等其他字段一律忽略
type PostInput struct {
	Title   *string `json:"title" validate:"required,post_title" example:"Test Post"`
	Content *string `json:"content" validate:"required,post_content" example:"Test content for the post"`
}

// CommentInput 创建/更新评论
type CommentInput struct {
	Content *string `json:"content" validate:"required,comment_content" example:"Nice post!"`
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=150,alphanum" example:"alice"`
	Email    string `json:"email" validate:"omitempty,email,max=254" example:"alice@example.com"`
	Password string `json:"password" validate:"required,min=8,max=72" example:"s3cret-pass"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Password string `json:"password" validate:"required" example:"s3cret-pass"`
}
