package model

import "time"

// Comment 评论；无 UpdatedAt，创建时间不可变
type Comment struct {
	ID        uint      `gorm:"primaryKey"`
	PostID    uint      `gorm:"not null;index:idx_comment_post_created"`
	AuthorID  uint      `gorm:"not null;index:idx_comment_author"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index:idx_comment_post_created"`
}

func (Comment) TableName() string { return "comments" }
