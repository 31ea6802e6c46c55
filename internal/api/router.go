package api

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/api/handler"
	"github.com/d60-Lab/gin-blog/internal/middleware"
	"github.com/d60-Lab/gin-blog/pkg/response"

	_ "github.com/d60-Lab/gin-blog/docs"
)

// NewRouter 注册中间件与路由
//
//	GET/POST          /posts/
//	GET/PUT/PATCH/DEL /posts/:id/
//	GET/POST          /posts/:id/comments/
//	PUT/DELETE        /comments/:id/
func NewRouter(cfg *config.Config, h *handler.Handler, authn middleware.Authenticator) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) { response.NotFound(c) })
	r.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, response.ErrorBody{Error: "Method \"" + c.Request.Method + "\" not allowed."})
	})

	r.Use(middleware.RequestID(), middleware.Recovery())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(middleware.Logger(), middleware.Compress(gzip.DefaultCompression), middleware.Identity(authn))

	r.GET("/healthz", h.Health)
	if cfg.Server.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", middleware.RequireWriteIdentity(), h.Logout)
	}

	// 所有资源路由：非安全方法先过写权限闸门（匿名 -> 403），再查找实体
	res := r.Group("/", middleware.RequireWriteIdentity())
	{
		res.GET("/posts/", h.ListPosts)
		res.POST("/posts/", h.CreatePost)
		res.GET("/posts/:id/", h.GetPost)
		res.PUT("/posts/:id/", h.AuthorizePost, h.UpdatePost)
		res.PATCH("/posts/:id/", h.AuthorizePost, h.UpdatePost)
		res.DELETE("/posts/:id/", h.AuthorizePost, h.DeletePost)

		res.GET("/posts/:id/comments/", h.ListComments)
		res.POST("/posts/:id/comments/", h.CreateComment)

		comment := res.Group("/comments/:id/", h.AuthorizeComment)
		comment.PUT("", h.UpdateComment)
		comment.DELETE("", h.DeleteComment)
	}

	return r
}
