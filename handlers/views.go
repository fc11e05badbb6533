package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go-photomap/mapview"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ViewRegistry holds the mounted admin map views.
type ViewRegistry interface {
	Create(ctx context.Context) *mapview.View
	Get(id string) (*mapview.View, error)
	Delete(id string) error
}

type valueRequest struct {
	Value *string `json:"value" binding:"required"`
}

// CreateView mounts a view, loads its locations and renders the first frame.
func CreateView(c *gin.Context, views ViewRegistry, logger *zap.Logger) {
	zoom, ok := zoomParam(c)
	if !ok {
		return
	}
	view := views.Create(c.Request.Context())
	render(c, view, zoom, http.StatusCreated, logger)
}

func GetView(c *gin.Context, views ViewRegistry, logger *zap.Logger) {
	withView(c, views, logger, func(view *mapview.View) bool { return true })
}

func SelectCompetition(c *gin.Context, views ViewRegistry, logger *zap.Logger) {
	value, ok := bindValue(c)
	if !ok {
		return
	}
	withView(c, views, logger, func(view *mapview.View) bool {
		view.SelectCompetition(value)
		return true
	})
}

func SelectTeam(c *gin.Context, views ViewRegistry, logger *zap.Logger) {
	value, ok := bindValue(c)
	if !ok {
		return
	}
	withView(c, views, logger, func(view *mapview.View) bool {
		view.SelectTeam(value)
		return true
	})
}

func ToggleCompare(c *gin.Context, views ViewRegistry, logger *zap.Logger) {
	withView(c, views, logger, func(view *mapview.View) bool {
		view.ToggleCompare()
		return true
	})
}

func SelectCompareTeam(c *gin.Context, views ViewRegistry, logger *zap.Logger) {
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid compare slot",
			"details": mapview.ErrInvalidSlot.Error(),
		})
		return
	}
	value, ok := bindValue(c)
	if !ok {
		return
	}
	withView(c, views, logger, func(view *mapview.View) bool {
		if err := view.SelectCompareTeam(slot, value); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid compare slot",
				"details": err.Error(),
			})
			return false
		}
		return true
	})
}

// DeleteView unmounts the view. The page calls it when it is left.
func DeleteView(c *gin.Context, views ViewRegistry) {
	if err := views.Delete(c.Param("id")); err != nil {
		viewNotFound(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// withView looks the view up, applies fn and renders the result unless fn
// already wrote a response.
func withView(c *gin.Context, views ViewRegistry, logger *zap.Logger, fn func(*mapview.View) bool) {
	zoom, ok := zoomParam(c)
	if !ok {
		return
	}
	view, err := views.Get(c.Param("id"))
	if err != nil {
		viewNotFound(c, err)
		return
	}
	if !fn(view) {
		return
	}
	render(c, view, zoom, http.StatusOK, logger)
}

func render(c *gin.Context, view *mapview.View, zoom, status int, logger *zap.Logger) {
	frame, err := view.Render(zoom)
	if err != nil {
		if errors.Is(err, mapview.ErrViewClosed) {
			viewNotFound(c, err)
			return
		}
		logger.Error("Failed to render view", zap.String("view", view.ID()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to render map",
			"details": err.Error(),
		})
		return
	}
	c.JSON(status, frame)
}

func zoomParam(c *gin.Context) (int, bool) {
	raw := c.Query("zoom")
	if raw == "" {
		return mapview.DefaultZoom, true
	}
	zoom, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid zoom",
			"details": err.Error(),
		})
		return 0, false
	}
	return zoom, true
}

func bindValue(c *gin.Context) (string, bool) {
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return "", false
	}
	return *req.Value, true
}

func viewNotFound(c *gin.Context, err error) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   "Map view not found",
		"details": err.Error(),
	})
}
