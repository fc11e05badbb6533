// Package web holds the embedded admin map page.
package web

import (
	"embed"
	"html/template"

	"go-photomap/mapview"
)

const AdminMapTemplate = "admin_map.html"

//go:embed templates/*.html
var templateFS embed.FS

// AdminMapPage is the data the page shell is rendered with.
type AdminMapPage struct {
	Title       string
	ViewsURL    string
	DefaultZoom int
	Center      [2]float64
	Icon        mapview.Icon
}

// Templates parses the embedded page templates for gin's HTML renderer.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}
