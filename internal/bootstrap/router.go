package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	httpapi "github.com/myinsta/portfolio-backend/internal/api/http"
	"github.com/myinsta/portfolio-backend/internal/api/http/middleware"
	"github.com/myinsta/portfolio-backend/internal/auth"
	authhttp "github.com/myinsta/portfolio-backend/internal/auth/http"
	authmw "github.com/myinsta/portfolio-backend/internal/auth/middleware"
	commentshttp "github.com/myinsta/portfolio-backend/internal/comments/http"
	projectshttp "github.com/myinsta/portfolio-backend/internal/projects/http"
	uploadhttp "github.com/myinsta/portfolio-backend/internal/upload/http"
)

type RouterDeps struct {
	ServiceName   string
	Version       string
	Log           zerolog.Logger
	CORSOrigins   []string
	Authenticator auth.Authenticator
	Services      *Services
	KeepAlive     time.Duration
	DBPing        httpapi.Pinger
	RedisPing     httpapi.Pinger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Log))
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DBPing, dep.RedisPing)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1", authmw.Authenticate(dep.Authenticator))

	authhttp.New(dep.Services.Auth).Register(api)

	projectsGroup := api.Group("/projects")
	projectshttp.New(dep.Services.Projects).Register(projectsGroup)
	commentshttp.New(dep.Services.Comments, dep.KeepAlive).Register(projectsGroup)

	uploadhttp.New(dep.Services.Uploads).Register(api)

	return r
}
