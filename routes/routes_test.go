package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-photomap/db"
	"go-photomap/mapview"
	"go-photomap/metrics"
	"go-photomap/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type emptyStore struct{}

func (emptyStore) ListLocations(context.Context) ([]types.LocationRecord, error) {
	return []types.LocationRecord{}, nil
}

func TestSetupRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	m := metrics.New()
	store := db.NewCachedStore(emptyStore{}, time.Minute, logger)

	r := SetupRouter(Deps{
		Loader:    store,
		Refresher: m.Instrument("api", store),
		Exporter:  db.NewFileExporter(t.TempDir() + "/export.json"),
		Views:     mapview.NewRegistry(store, time.Minute, logger, m),
		Metrics:   m,
		Logger:    logger,
	})

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/admin/admin_map", http.StatusOK},
		{http.MethodGet, "/api/locations", http.StatusOK},
		{http.MethodPost, "/api/locations/refresh", http.StatusOK},
		{http.MethodPost, "/api/locations/export", http.StatusOK},
		{http.MethodPost, "/api/admin/map/views", http.StatusCreated},
		{http.MethodGet, "/api/admin/map/views/unknown", http.StatusNotFound},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
