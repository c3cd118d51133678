package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/config"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/handler"
)

func Setup(cfg *config.Config, sessionHandler *handler.SessionHandler) *gin.Engine {
	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}))
	// 晨记 Markdown 较长，按默认级别压缩
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", handler.Health)

	api := r.Group("/api")
	{
		sessionHandler.RegisterRoutes(api)
	}

	return r
}
