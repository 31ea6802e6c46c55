package service

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/internal/dto"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/permission"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/validation"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

// PostService 帖子服务
//
// 检查顺序固定：写权限 -> 查找(404) -> 作者校验(403) -> 字段校验(400) -> 落库。
// 任何一步失败都不会产生写入。
type PostService interface {
	List(ctx context.Context) ([]dto.PostListItem, error)
	Get(ctx context.Context, id uint) (*dto.PostDetail, error)
	Create(ctx context.Context, identity *model.User, in dto.PostInput) (*dto.PostDetail, error)
	// Authorize 查找帖子并校验作者；PUT、PATCH 与 DELETE 在读取请求体之前先调用
	Authorize(ctx context.Context, identity *model.User, id uint, method string) (*model.Post, error)
	// Update partial=true 对应 PATCH：缺省字段沿用原值
	Update(ctx context.Context, post *model.Post, in dto.PostInput, partial bool) (*dto.PostDetail, error)
	Delete(ctx context.Context, post *model.Post) error
}

type postService struct {
	postRepo repository.PostRepository
}

func NewPostService(postRepo repository.PostRepository) PostService {
	return &postService{postRepo: postRepo}
}

func (s *postService) List(ctx context.Context) ([]dto.PostListItem, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	counts, err := s.postRepo.CommentCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	res := make([]dto.PostListItem, len(posts))
	for i, p := range posts {
		res[i] = dto.NewPostListItem(p, counts[p.ID])
	}
	return res, nil
}

func (s *postService) Get(ctx context.Context, id uint) (*dto.PostDetail, error) {
	p, err := s.postRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	detail := dto.NewPostDetail(p)
	return &detail, nil
}

func (s *postService) Create(ctx context.Context, identity *model.User, in dto.PostInput) (*dto.PostDetail, error) {
	if err := permission.CanWrite(identity, http.MethodPost); err != nil {
		return nil, err
	}
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	p := &model.Post{Title: *in.Title, Content: *in.Content, AuthorID: identity.ID}
	if err := s.postRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.Info("post created", zap.Uint("post_id", p.ID), zap.Uint("author_id", p.AuthorID))
	detail := dto.NewPostDetail(p)
	return &detail, nil
}

func (s *postService) Authorize(ctx context.Context, identity *model.User, id uint, method string) (*model.Post, error) {
	if err := permission.CanWrite(identity, method); err != nil {
		return nil, err
	}
	p, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	if err := permission.CanModify(identity, p.AuthorID, method); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *postService) Update(ctx context.Context, post *model.Post, in dto.PostInput, partial bool) (*dto.PostDetail, error) {
	if partial {
		if in.Title == nil {
			in.Title = &post.Title
		}
		if in.Content == nil {
			in.Content = &post.Content
		}
	}
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	post.Title, post.Content = *in.Title, *in.Content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.Get(ctx, post.ID)
}

func (s *postService) Delete(ctx context.Context, post *model.Post) error {
	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return notFound(err, ErrPostNotFound)
	}
	logger.Info("post deleted", zap.Uint("post_id", post.ID), zap.Uint("author_id", post.AuthorID))
	return nil
}

// notFound 把仓储层的 ErrNotFound 换成领域错误，其余原样返回
func notFound(err, domainErr error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domainErr
	}
	return err
}
