package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/gin-blog/internal/model"
)

// PostRepository 帖子仓储
type PostRepository interface {
	// Create 写入帖子并回填作者
	Create(ctx context.Context, post *model.Post) error

	// GetByID 查询帖子（含作者，不含评论）
	GetByID(ctx context.Context, id uint) (*model.Post, error)

	// GetDetail 查询帖子（含作者与评论，评论按时间正序）
	GetDetail(ctx context.Context, id uint) (*model.Post, error)

	// List 全部帖子，按创建时间倒序
	List(ctx context.Context) ([]*model.Post, error)

	// CommentCounts 统计每个帖子的评论数
	CommentCounts(ctx context.Context, postIDs []uint) (map[uint]int64, error)

	// Update 保存标题与内容并刷新 updated_at
	Update(ctx context.Context, post *model.Post) error

	// Delete 删除帖子及其全部评论
	Delete(ctx context.Context, id uint) error

	Exists(ctx context.Context, id uint) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(post).Error; err != nil {
		return err
	}
	return translate(db.First(&post.Author, post.AuthorID).Error)
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *postRepository) GetDetail(ctx context.Context, id uint) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at ASC, comments.id ASC")
		}).
		Preload("Comments.Author").
		First(&p, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *postRepository) List(ctx context.Context) ([]*model.Post, error) {
	var posts []*model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("posts.created_at DESC, posts.id DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) CommentCounts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		PostID uint
		Cnt    int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Comment{}).
		Select("post_id, COUNT(*) AS cnt").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.PostID] = row.Cnt
	}
	return counts, nil
}

func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).
		Model(post).
		Omit(clause.Associations).
		Select("title", "content", "updated_at").
		Updates(post).Error
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	// 外键已声明 ON DELETE CASCADE；这里显式删除，避免依赖驱动是否开启外键
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}
