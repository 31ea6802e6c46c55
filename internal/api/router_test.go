package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/api/handler"
	"github.com/d60-Lab/gin-blog/internal/auth"
	"github.com/d60-Lab/gin-blog/internal/dto"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/permission"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/internal/testutil"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

type RouterSuite struct {
	suite.Suite
	db       *gorm.DB
	redis    *miniredis.Miniredis
	router   *gin.Engine
	alice    *model.User
	bob      *model.User
	aliceTok string
	bobTok   string
}

func TestRouterSuite(t *testing.T) { suite.Run(t, new(RouterSuite)) }

func (s *RouterSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.redis = miniredis.RunT(s.T())
	rdb := redis.NewClient(&redis.Options{Addr: s.redis.Addr()})
	s.T().Cleanup(func() { _ = rdb.Close() })

	postRepo := repository.NewPostRepository(s.db)
	tokens := auth.NewTokenManager("router-test-secret-0123456789", "gin-blog", time.Hour)
	authService := service.NewAuthService(repository.NewUserRepository(s.db), tokens, auth.NewRedisRevoker(rdb))
	h := handler.New(
		service.NewPostService(postRepo),
		service.NewCommentService(postRepo, repository.NewCommentRepository(s.db)),
		authService,
		func(context.Context) error { return nil },
	)
	s.router = NewRouter(&config.Config{Server: config.ServerConfig{Mode: gin.TestMode}}, h, authService)

	s.alice = testutil.CreateUser(s.T(), s.db, "alice")
	s.bob = testutil.CreateUser(s.T(), s.db, "bob")
	s.aliceTok = s.login("alice")
	s.bobTok = s.login("bob")
}

func (s *RouterSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		s.Require().NoError(json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, dst any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func (s *RouterSuite) login(username string) string {
	w := s.do(http.MethodPost, "/auth/login", "", gin.H{"username": username, "password": testutil.Password})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var tok dto.TokenResponse
	s.decode(w, &tok)
	return tok.Token
}

func (s *RouterSuite) createPost(token, title, content string) dto.PostDetail {
	w := s.do(http.MethodPost, "/posts/", token, gin.H{"title": title, "content": content})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var p dto.PostDetail
	s.decode(w, &p)
	return p
}

func (s *RouterSuite) createComment(token string, postID uint, content string) dto.CommentView {
	w := s.do(http.MethodPost, fmt.Sprintf("/posts/%d/comments/", postID), token, gin.H{"content": content})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var c dto.CommentView
	s.decode(w, &c)
	return c
}

func (s *RouterSuite) errorBody(w *httptest.ResponseRecorder) string {
	var body response.ErrorBody
	s.decode(w, &body)
	return body.Error
}

func (s *RouterSuite) TestCreatePost_AuthorForcedFromToken() {
	w := s.do(http.MethodPost, "/posts/", s.aliceTok, gin.H{
		"title":   "Hello",
		"content": "World!!",
		"author":  gin.H{"id": s.bob.ID},
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	var p dto.PostDetail
	s.decode(w, &p)
	s.Equal(s.alice.ID, p.Author.ID)
	s.Equal("alice", p.Author.Username)
	s.NotNil(p.Comments)

	w = s.do(http.MethodGet, fmt.Sprintf("/posts/%d/", p.ID), "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var got dto.PostDetail
	s.decode(w, &got)
	s.Equal("Hello", got.Title)
	s.Equal("World!!", got.Content)
	s.Empty(got.Comments)
}

func (s *RouterSuite) TestCreatePost_InvalidFieldsReported() {
	w := s.do(http.MethodPost, "/posts/", s.aliceTok, gin.H{"title": " a ", "content": "1234"})
	s.Require().Equal(http.StatusBadRequest, w.Code)
	var errs map[string][]string
	s.decode(w, &errs)
	s.Equal([]string{"Title must be at least 2 characters long."}, errs["title"])
	s.Equal([]string{"Content must be at least 5 characters long."}, errs["content"])

	w = s.do(http.MethodPost, "/posts/", s.aliceTok, gin.H{"title": "ok title"})
	s.Require().Equal(http.StatusBadRequest, w.Code)
	errs = nil
	s.decode(w, &errs)
	s.Equal([]string{"This field is required."}, errs["content"])

	var n int64
	s.Require().NoError(s.db.Model(&model.Post{}).Count(&n).Error)
	s.Zero(n)
}

func (s *RouterSuite) TestMalformedJSON() {
	w := s.do(http.MethodPost, "/posts/", s.aliceTok, `{"title": `)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(s.errorBody(w), "JSON parse error")
}

func (s *RouterSuite) TestGetPost_Idempotent() {
	p := s.createPost(s.aliceTok, "Stable", "content body")
	s.createComment(s.bobTok, p.ID, "first")

	path := fmt.Sprintf("/posts/%d/", p.ID)
	first := s.do(http.MethodGet, path, "", nil)
	second := s.do(http.MethodGet, path, s.bobTok, nil)
	s.Equal(http.StatusOK, first.Code)
	s.JSONEq(first.Body.String(), second.Body.String())
}

func (s *RouterSuite) TestListPosts_NewestFirstWithCounts() {
	older := s.createPost(s.aliceTok, "older", "content one")
	newer := s.createPost(s.bobTok, "newer", "content two")
	s.createComment(s.aliceTok, older.ID, "c1")
	s.createComment(s.bobTok, older.ID, "c2")

	w := s.do(http.MethodGet, "/posts/", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list []dto.PostListItem
	s.decode(w, &list)
	s.Require().Len(list, 2)
	s.Equal(newer.ID, list[0].ID)
	s.Equal(older.ID, list[1].ID)
	s.EqualValues(0, list[0].CommentsCount)
	s.EqualValues(2, list[1].CommentsCount)
	s.Equal("bob", list[0].Author.Username)
}

func (s *RouterSuite) TestListPosts_EmptyIsArray() {
	w := s.do(http.MethodGet, "/posts/", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, w.Body.String())
}

func (s *RouterSuite) TestUpdatePost_AuthorOnly() {
	p := s.createPost(s.aliceTok, "Original", "original body")
	path := fmt.Sprintf("/posts/%d/", p.ID)

	w := s.do(http.MethodPut, path, s.bobTok, gin.H{"title": "Hijack", "content": "hijacked body"})
	s.Require().Equal(http.StatusForbidden, w.Code)
	s.Equal(permission.ReasonNotAuthor, s.errorBody(w))

	w = s.do(http.MethodPut, path, s.aliceTok, gin.H{"title": "Edited", "content": "edited body"})
	s.Require().Equal(http.StatusOK, w.Code)
	var got dto.PostDetail
	s.decode(w, &got)
	s.Equal("Edited", got.Title)
	s.Equal(s.alice.ID, got.Author.ID)
	s.False(got.UpdatedAt.Before(p.UpdatedAt))
}

func (s *RouterSuite) TestUpdatePost_PutRequiresBothFields() {
	p := s.createPost(s.aliceTok, "Original", "original body")
	w := s.do(http.MethodPut, fmt.Sprintf("/posts/%d/", p.ID), s.aliceTok, gin.H{"title": "Only title"})
	s.Require().Equal(http.StatusBadRequest, w.Code)
	var errs map[string][]string
	s.decode(w, &errs)
	s.Contains(errs, "content")
}

func (s *RouterSuite) TestPatchPost_MergesFields() {
	p := s.createPost(s.aliceTok, "Original", "original body")
	path := fmt.Sprintf("/posts/%d/", p.ID)

	w := s.do(http.MethodPatch, path, s.aliceTok, gin.H{"title": "Patched"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var got dto.PostDetail
	s.decode(w, &got)
	s.Equal("Patched", got.Title)
	s.Equal("original body", got.Content)

	w = s.do(http.MethodPatch, path, s.aliceTok, gin.H{"content": "tiny"})
	s.Require().Equal(http.StatusBadRequest, w.Code)
	var errs map[string][]string
	s.decode(w, &errs)
	s.Contains(errs, "content")
	s.NotContains(errs, "title")
}

func (s *RouterSuite) TestDeletePost_CascadesComments() {
	p := s.createPost(s.aliceTok, "Doomed", "doomed content")
	c := s.createComment(s.bobTok, p.ID, "bye")

	w := s.do(http.MethodDelete, fmt.Sprintf("/posts/%d/", p.ID), s.bobTok, nil)
	s.Require().Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/posts/%d/", p.ID), s.aliceTok, nil)
	s.Require().Equal(http.StatusNoContent, w.Code)
	s.Empty(w.Body.Bytes())

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, fmt.Sprintf("/posts/%d/", p.ID), "", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, fmt.Sprintf("/posts/%d/comments/", p.ID), "", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, fmt.Sprintf("/comments/%d/", c.ID), s.bobTok, nil).Code)

	var n int64
	s.Require().NoError(s.db.Model(&model.Comment{}).Where("post_id = ?", p.ID).Count(&n).Error)
	s.Zero(n)
}

func (s *RouterSuite) TestComments_OldestFirst() {
	p := s.createPost(s.aliceTok, "Thread", "thread body")
	first := s.createComment(s.bobTok, p.ID, "first!")
	second := s.createComment(s.aliceTok, p.ID, "second")

	w := s.do(http.MethodGet, fmt.Sprintf("/posts/%d/comments/", p.ID), "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list []dto.CommentView
	s.decode(w, &list)
	s.Require().Len(list, 2)
	s.Equal(first.ID, list[0].ID)
	s.Equal(second.ID, list[1].ID)
	s.Equal("bob", list[0].Author.Username)

	w = s.do(http.MethodGet, fmt.Sprintf("/posts/%d/", p.ID), "", nil)
	var detail dto.PostDetail
	s.decode(w, &detail)
	s.Require().Len(detail.Comments, 2)
	s.Equal(first.ID, detail.Comments[0].ID)
}

func (s *RouterSuite) TestCreateComment_TooShort() {
	p := s.createPost(s.aliceTok, "Thread", "thread body")
	w := s.do(http.MethodPost, fmt.Sprintf("/posts/%d/comments/", p.ID), s.bobTok, gin.H{"content": "x"})
	s.Require().Equal(http.StatusBadRequest, w.Code)
	var errs map[string][]string
	s.decode(w, &errs)
	s.Equal([]string{"Comment content must be at least 2 characters long."}, errs["content"])
}

func (s *RouterSuite) TestCreateComment_AuthorAndPostForced() {
	p := s.createPost(s.aliceTok, "Thread", "thread body")
	other := s.createPost(s.aliceTok, "Other", "other body")
	w := s.do(http.MethodPost, fmt.Sprintf("/posts/%d/comments/", p.ID), s.bobTok, gin.H{
		"content": "hello",
		"author":  s.alice.ID,
		"post":    other.ID,
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	var c dto.CommentView
	s.decode(w, &c)
	s.Equal(s.bob.ID, c.Author.ID)

	var stored model.Comment
	s.Require().NoError(s.db.First(&stored, c.ID).Error)
	s.Equal(p.ID, stored.PostID)
	s.Equal(s.bob.ID, stored.AuthorID)
}

func (s *RouterSuite) TestComments_UnknownPost() {
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/posts/999999/comments/", "", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/posts/999999/comments/", s.bobTok, gin.H{"content": "hi there"}).Code)
}

func (s *RouterSuite) TestCommentItem_AuthorOnly() {
	p := s.createPost(s.aliceTok, "Thread", "thread body")
	c := s.createComment(s.bobTok, p.ID, "mine")
	path := fmt.Sprintf("/comments/%d/", c.ID)

	for _, method := range []string{http.MethodPut, http.MethodDelete} {
		w := s.do(method, path, s.aliceTok, gin.H{"content": "not yours"})
		s.Require().Equal(http.StatusForbidden, w.Code, method)
		s.Equal(permission.ReasonNotCommentAuthor, s.errorBody(w))
	}

	w := s.do(http.MethodPut, path, s.bobTok, gin.H{"content": "x"})
	s.Require().Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, path, s.bobTok, gin.H{"content": "edited"})
	s.Require().Equal(http.StatusOK, w.Code)
	var got dto.CommentView
	s.decode(w, &got)
	s.Equal("edited", got.Content)
	s.Equal(c.CreatedAt.Unix(), got.CreatedAt.Unix())

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, path, s.bobTok, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, path, s.bobTok, nil).Code)
}

func (s *RouterSuite) TestCommentItem_PatchNotAllowed() {
	p := s.createPost(s.aliceTok, "Thread", "thread body")
	c := s.createComment(s.bobTok, p.ID, "mine")
	w := s.do(http.MethodPatch, fmt.Sprintf("/comments/%d/", c.ID), s.bobTok, gin.H{"content": "patched"})
	s.Equal(http.StatusMethodNotAllowed, w.Code)
}

func (s *RouterSuite) TestAnonymousWritesForbidden() {
	p := s.createPost(s.aliceTok, "Thread", "thread body")
	c := s.createComment(s.bobTok, p.ID, "mine")

	cases := []struct{ method, path string }{
		{http.MethodPost, "/posts/"},
		{http.MethodPut, fmt.Sprintf("/posts/%d/", p.ID)},
		{http.MethodPatch, fmt.Sprintf("/posts/%d/", p.ID)},
		{http.MethodDelete, fmt.Sprintf("/posts/%d/", p.ID)},
		{http.MethodPost, fmt.Sprintf("/posts/%d/comments/", p.ID)},
		{http.MethodPut, fmt.Sprintf("/comments/%d/", c.ID)},
		{http.MethodDelete, fmt.Sprintf("/comments/%d/", c.ID)},
		// 写权限闸门先于查找
		{http.MethodDelete, "/posts/999999/"},
		{http.MethodPut, "/comments/999999/"},
	}
	for _, tc := range cases {
		w := s.do(tc.method, tc.path, "", gin.H{"title": "Title", "content": "content body"})
		s.Equal(http.StatusForbidden, w.Code, "%s %s", tc.method, tc.path)
		s.Equal(permission.ReasonNotAuthenticated, s.errorBody(w))
	}

	// 无效 token 按匿名处理
	w := s.do(http.MethodPost, "/posts/", "not-a-token", gin.H{"title": "Title", "content": "content body"})
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/posts/", "not-a-token", nil).Code)
}

func (s *RouterSuite) TestAuthenticatedUnknownIDs() {
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/posts/999999/", "", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodPut, "/posts/999999/", s.aliceTok, gin.H{"title": "Title", "content": "content body"}).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/comments/999999/", s.aliceTok, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/posts/abc/", "", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/posts/0/comments/", "", nil).Code)
}

func (s *RouterSuite) TestBadBody_LookupAndOwnershipFirst() {
	p := s.createPost(s.aliceTok, "Original", "original body")
	path := fmt.Sprintf("/posts/%d/", p.ID)

	for _, body := range []string{`{not json`, `{"title":123}`} {
		// 非作者：403
		for _, method := range []string{http.MethodPut, http.MethodPatch} {
			w := s.do(method, path, s.bobTok, body)
			s.Equal(http.StatusForbidden, w.Code, "%s %s", method, body)
			s.Equal(permission.ReasonNotAuthor, s.errorBody(w))
		}
		// 不存在的帖子：404
		s.Equal(http.StatusNotFound, s.do(http.MethodPut, "/posts/999999/", s.aliceTok, body).Code, body)
		s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/posts/999999/comments/", s.bobTok, body).Code, body)
		// 作者本人：400
		s.Equal(http.StatusBadRequest, s.do(http.MethodPut, path, s.aliceTok, body).Code, body)
		s.Equal(http.StatusBadRequest, s.do(http.MethodPost, path+"comments/", s.bobTok, body).Code, body)
	}

	w := s.do(http.MethodGet, path, "", nil)
	var got dto.PostDetail
	s.decode(w, &got)
	s.Equal("Original", got.Title)
	s.Empty(got.Comments)
}

func (s *RouterSuite) TestRegisterAndLogin() {
	w := s.do(http.MethodPost, "/auth/register", "", gin.H{"username": "carol", "email": "carol@example.com", "password": "s3cret-pass"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var u dto.UserSummary
	s.decode(w, &u)
	s.Equal("carol", u.Username)

	w = s.do(http.MethodPost, "/auth/register", "", gin.H{"username": "carol", "password": "another-pass"})
	s.Require().Equal(http.StatusBadRequest, w.Code)
	var errs map[string][]string
	s.decode(w, &errs)
	s.Contains(errs, "username")

	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"username": "carol", "password": "wrong-pass"})
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"username": "carol", "password": "s3cret-pass"})
	s.Require().Equal(http.StatusOK, w.Code)
	var tok dto.TokenResponse
	s.decode(w, &tok)
	s.Equal("Bearer", tok.TokenType)
	s.NotEmpty(tok.Token)
	s.createPost(tok.Token, "By carol", "carol's content")
}

func (s *RouterSuite) TestLogoutRevokesToken() {
	s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/auth/logout", "", nil).Code)

	s.createPost(s.aliceTok, "Before", "before logout")
	s.Require().Equal(http.StatusNoContent, s.do(http.MethodPost, "/auth/logout", s.aliceTok, nil).Code)

	w := s.do(http.MethodPost, "/posts/", s.aliceTok, gin.H{"title": "After", "content": "after logout"})
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal(permission.ReasonNotAuthenticated, s.errorBody(w))

	// 其他用户的 token 不受影响
	s.createPost(s.bobTok, "Still", "still logged in")
}

func (s *RouterSuite) TestHealthz() {
	w := s.do(http.MethodGet, "/healthz", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"status":"ok"`)
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func TestHealthz_DatabaseDown(t *testing.T) {
	h := handler.New(nil, nil, nil, func(context.Context) error { return errors.New("connection refused") })
	r := NewRouter(&config.Config{Server: config.ServerConfig{Mode: gin.TestMode}}, h, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if got := w.Body.String(); got != `{"status":"unavailable"}` {
		t.Fatalf("body = %s", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	h := handler.New(nil, nil, nil, nil)
	r := NewRouter(&config.Config{Server: config.ServerConfig{Mode: gin.TestMode}}, h, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
