package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gin-blog/internal/auth"
	"github.com/d60-Lab/gin-blog/internal/model"
)

type fakeAuthenticator map[string]*model.User

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*model.User, *auth.Claims, error) {
	if u, ok := f[token]; ok {
		return u, &auth.Claims{}, nil
	}
	return nil, nil, errors.New("bad token")
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery(), Logger(), Identity(fakeAuthenticator{"good": {ID: 7, Username: "alice"}}))
	g := r.Group("/", RequireWriteIdentity())
	whoami := func(c *gin.Context) {
		if u := CurrentUser(c); u != nil {
			c.String(http.StatusOK, u.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	}
	g.GET("/thing", whoami)
	g.POST("/thing", whoami)
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, method, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentityAndWriteGate(t *testing.T) {
	r := newEngine()

	w := do(r, http.MethodGet, "/thing", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	w = do(r, http.MethodGet, "/thing", "Bearer good")
	assert.Equal(t, "alice", w.Body.String())

	w = do(r, http.MethodPost, "/thing", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Authentication credentials were not provided.")

	w = do(r, http.MethodPost, "/thing", "Bearer bad")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPost, "/thing", "Basic good")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPost, "/thing", "bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := newEngine()

	w := do(r, http.MethodGet, "/thing", "")
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/thing", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestRecovery(t *testing.T) {
	w := do(newEngine(), http.MethodGet, "/panic", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestCompress_SkipsBodilessWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Compress(gzip.DefaultCompression))
	r.GET("/thing", func(c *gin.Context) { c.String(http.StatusOK, "hello hello hello") })
	r.DELETE("/thing", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	send := func(method string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/thing", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send(http.MethodDelete)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Empty(t, w.Body.Bytes())

	w = send(http.MethodGet)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}
