package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/gin-blog/internal/model"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id uint) (*model.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]model.Comment, error)
	UpdateContent(ctx context.Context, comment *model.Comment, content string) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return err
	}
	return translate(db.First(&comment.Author, comment.AuthorID).Error)
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*model.Comment, error) {
	var c model.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// ListByPost 评论按时间正序
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]model.Comment, error) {
	var res []model.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&res).Error
	return res, err
}

func (r *commentRepository) UpdateContent(ctx context.Context, comment *model.Comment, content string) error {
	if err := r.db.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ?", comment.ID).
		Update("content", content).Error; err != nil {
		return err
	}
	comment.Content = content
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
