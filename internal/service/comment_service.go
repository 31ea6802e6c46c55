package service

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/internal/dto"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/permission"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/validation"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

// CommentService 评论服务
type CommentService interface {
	// RequirePost 帖子不存在时返回 ErrPostNotFound
	RequirePost(ctx context.Context, postID uint) error
	ListByPost(ctx context.Context, postID uint) ([]dto.CommentView, error)
	Create(ctx context.Context, identity *model.User, postID uint, in dto.CommentInput) (*dto.CommentView, error)
	// Authorize 查找评论并校验作者；PUT 与 DELETE 共用这一步
	Authorize(ctx context.Context, identity *model.User, commentID uint, method string) (*model.Comment, error)
	Update(ctx context.Context, comment *model.Comment, in dto.CommentInput) (*dto.CommentView, error)
	Delete(ctx context.Context, comment *model.Comment) error
}

type commentService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

func NewCommentService(postRepo repository.PostRepository, commentRepo repository.CommentRepository) CommentService {
	return &commentService{postRepo: postRepo, commentRepo: commentRepo}
}

func (s *commentService) ListByPost(ctx context.Context, postID uint) ([]dto.CommentView, error) {
	if err := s.RequirePost(ctx, postID); err != nil {
		return nil, err
	}
	items, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return dto.NewCommentViews(items), nil
}

func (s *commentService) Create(ctx context.Context, identity *model.User, postID uint, in dto.CommentInput) (*dto.CommentView, error) {
	if err := permission.CanWrite(identity, http.MethodPost); err != nil {
		return nil, err
	}
	if err := s.RequirePost(ctx, postID); err != nil {
		return nil, err
	}
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	c := &model.Comment{PostID: postID, AuthorID: identity.ID, Content: *in.Content}
	if err := s.commentRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	logger.Info("comment created", zap.Uint("comment_id", c.ID), zap.Uint("post_id", postID), zap.Uint("author_id", identity.ID))
	view := dto.NewCommentView(c)
	return &view, nil
}

func (s *commentService) Authorize(ctx context.Context, identity *model.User, commentID uint, method string) (*model.Comment, error) {
	if err := permission.CanWrite(identity, method); err != nil {
		return nil, err
	}
	c, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, notFound(err, ErrCommentNotFound)
	}
	if err := permission.CanModifyComment(identity, c, method); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *commentService) Update(ctx context.Context, comment *model.Comment, in dto.CommentInput) (*dto.CommentView, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	if err := s.commentRepo.UpdateContent(ctx, comment, *in.Content); err != nil {
		return nil, err
	}
	view := dto.NewCommentView(comment)
	return &view, nil
}

func (s *commentService) Delete(ctx context.Context, comment *model.Comment) error {
	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		return notFound(err, ErrCommentNotFound)
	}
	logger.Info("comment deleted", zap.Uint("comment_id", comment.ID), zap.Uint("post_id", comment.PostID))
	return nil
}

func (s *commentService) RequirePost(ctx context.Context, postID uint) error {
	ok, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPostNotFound
	}
	return nil
}
