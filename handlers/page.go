package handlers

import (
	"net/http"

	"go-photomap/mapview"
	"go-photomap/web"

	"github.com/gin-gonic/gin"
)

// AdminMapPage serves the page shell. The map itself is drawn client side
// from the view API.
func AdminMapPage(c *gin.Context) {
	c.HTML(http.StatusOK, web.AdminMapTemplate, web.AdminMapPage{
		Title:       "Admin map",
		ViewsURL:    "/api/admin/map/views",
		DefaultZoom: mapview.DefaultZoom,
		Center:      [2]float64{20, 0},
		Icon:        mapview.DefaultMarkerIcon,
	})
}
