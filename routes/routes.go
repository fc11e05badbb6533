package routes

import (
	"net/http"

	"go-photomap/db"
	"go-photomap/handlers"
	"go-photomap/logger"
	"go-photomap/mapview"
	"go-photomap/metrics"
	"go-photomap/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the services the routes are wired to.
type Deps struct {
	Loader    mapview.Loader
	Refresher handlers.Refresher
	Exporter  db.Exporter
	Views     handlers.ViewRegistry
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(logger.Gin(d.Logger), logger.Recovery(d.Logger))
	r.SetHTMLTemplate(web.Templates())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Hello, welcome to Go Photomap!",
		})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	admin := r.Group("/admin")
	{
		admin.GET("/admin_map", handlers.AdminMapPage)
	}

	api := r.Group("/api")
	{
		api.GET("/locations", func(c *gin.Context) {
			handlers.GetLocations(c, d.Loader, d.Logger)
		})
		api.POST("/locations/refresh", func(c *gin.Context) {
			handlers.RefreshLocations(c, d.Refresher, d.Logger)
		})
		api.POST("/locations/export", func(c *gin.Context) {
			handlers.ExportLocations(c, d.Loader, d.Exporter, d.Logger)
		})
	}

	views := api.Group("/admin/map/views")
	{
		views.POST("", func(c *gin.Context) {
			handlers.CreateView(c, d.Views, d.Logger)
		})
		views.GET("/:id", func(c *gin.Context) {
			handlers.GetView(c, d.Views, d.Logger)
		})
		views.PUT("/:id/competition", func(c *gin.Context) {
			handlers.SelectCompetition(c, d.Views, d.Logger)
		})
		views.PUT("/:id/team", func(c *gin.Context) {
			handlers.SelectTeam(c, d.Views, d.Logger)
		})
		views.POST("/:id/compare", func(c *gin.Context) {
			handlers.ToggleCompare(c, d.Views, d.Logger)
		})
		views.PUT("/:id/compare/:slot", func(c *gin.Context) {
			handlers.SelectCompareTeam(c, d.Views, d.Logger)
		})
		views.DELETE("/:id", func(c *gin.Context) {
			handlers.DeleteView(c, d.Views)
		})
	}

	return r
}
