package handlers

import (
	"context"
	"fmt"
	"net/http"

	"go-photomap/db"
	"go-photomap/mapview"
	"go-photomap/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Refresher reloads the location snapshot.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// GetLocations serves the full listing in the envelope the map page expects.
func GetLocations(c *gin.Context, loader mapview.Loader, logger *zap.Logger) {
	payload, err := loader.FetchLocations(c.Request.Context())
	if err != nil {
		logger.Error("Failed to fetch locations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.LocationsResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.LocationsResponse{Success: true, Data: payload})
}

func RefreshLocations(c *gin.Context, refresher Refresher, logger *zap.Logger) {
	n, err := refresher.Refresh(c.Request.Context())
	if err != nil {
		logger.Error("Failed to refresh locations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to refresh location data",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Refreshed %d locations.", n),
		"count":   n,
	})
}

// ExportLocations writes the current listing through exporter.
func ExportLocations(c *gin.Context, loader mapview.Loader, exporter db.Exporter, logger *zap.Logger) {
	logger.Info("Received request to export locations")

	payload, err := loader.FetchLocations(c.Request.Context())
	if err != nil {
		logger.Error("Error fetching locations for export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch location data",
			"details": err.Error(),
		})
		return
	}

	if len(payload.Locations) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"message": "No locations found to export.",
			"count":   0,
		})
		return
	}

	target, err := exporter.Export(c.Request.Context(), payload)
	if err != nil {
		logger.Error("Error writing export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to write export",
			"details": err.Error(),
		})
		return
	}

	logger.Info("Exported locations", zap.Int("count", len(payload.Locations)), zap.String("target", target))
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Successfully exported %d locations.", len(payload.Locations)),
		"target":  target,
		"count":   len(payload.Locations),
	})
}
