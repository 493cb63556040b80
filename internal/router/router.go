package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Oxyrus/virtualtourist/internal/config"
	"github.com/Oxyrus/virtualtourist/internal/http/handlers"
	"github.com/Oxyrus/virtualtourist/internal/http/middleware"
	"github.com/Oxyrus/virtualtourist/internal/photosync"
	"github.com/Oxyrus/virtualtourist/internal/storage"
)

func New(cfg *config.Config, logger *slog.Logger, store storage.Store, coord *photosync.Coordinator, images handlers.ImageLoader) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))

	locationHandler := handlers.NewLocationHandler(logger, store.Locations(), store.Photos(), coord)
	photoHandler := handlers.NewPhotoHandler(logger, store.Photos(), coord, images)

	r.GET("/healthz", handlers.Health(logger, store))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	protected := r.Group("/")
	protected.Use(middleware.RequireToken(cfg.APIToken))

	protected.GET("/locations", locationHandler.List)
	protected.POST("/locations", locationHandler.Create)
	protected.DELETE("/locations", locationHandler.DeleteAll)
	protected.GET("/locations/:id", locationHandler.Get)
	protected.PATCH("/locations/:id", locationHandler.Update)
	protected.DELETE("/locations/:id", locationHandler.Delete)
	protected.POST("/locations/:id/page-count", locationHandler.RefreshPageCount)
	protected.POST("/locations/:id/album", locationHandler.FetchAlbum)
	protected.POST("/locations/:id/collection", locationHandler.NewCollection)
	protected.DELETE("/locations/:id/sync", locationHandler.CancelSync)
	protected.GET("/locations/:id/status", locationHandler.Status)
	protected.GET("/locations/:id/photos", locationHandler.Photos)
	protected.DELETE("/locations/:id/photos", locationHandler.DeletePhotos)

	protected.GET("/photos/:id", photoHandler.Get)
	protected.DELETE("/photos/:id", photoHandler.Delete)
	protected.GET("/photos/:id/image", photoHandler.Image)
	protected.GET("/photos/:id/info", photoHandler.Info)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}
