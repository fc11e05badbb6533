// Package cluster groups map markers by proximity and manages the single marker
// overlay a map may show at a time.
package cluster

import (
	"fmt"
	"math"

	"go-photomap/types"
)

const (
	earthRadiusKM = 6371.0

	// clusterRadiusPx mirrors the default max cluster radius of the browser
	// clustering plugin.
	clusterRadiusPx = 80
	// metersPerPixelZ0 is the web-mercator ground resolution at the equator, zoom 0.
	metersPerPixelZ0 = 156543.03392

	MinZoom = 0
	MaxZoom = 19
)

// Locatable is anything that can be placed on the map.
type Locatable interface {
	Position() (lat, lon float64)
}

// Cluster is a group of nearby markers. A cluster with a single marker is
// drawn as the marker itself.
type Cluster[M Locatable] struct {
	ID          string            `json:"id"`
	Lat         float64           `json:"lat"` // centroid
	Lon         float64           `json:"lon"`
	Count       int               `json:"count"`
	BoundingBox types.BoundingBox `json:"boundingBox"`
	Markers     []M               `json:"markers"`
}

// Group clusters markers greedily: each marker joins the first cluster whose
// seed lies within the radius, otherwise it seeds a new cluster. Membership is
// not transitive, so a cluster never spans more than twice the radius. The
// radius is given at the equator and shrinks with cos(lat) of the seed, as the
// mercator ground resolution does. Seeds are taken in input order so the
// output is deterministic. A radius <= 0 yields one cluster per marker.
func Group[M Locatable](markers []M, radiusKM float64) []Cluster[M] {
	type seed struct {
		lat, lon float64
		radiusKM float64
		members  []int
	}
	var seeds []*seed

	for i := range markers {
		lat, lon := markers[i].Position()

		var home *seed
		if radiusKM > 0 {
			for _, s := range seeds {
				if haversineDistance(s.lat, s.lon, lat, lon) <= s.radiusKM {
					home = s
					break
				}
			}
		}
		if home == nil {
			home = &seed{lat: lat, lon: lon, radiusKM: radiusAtLatitude(radiusKM, lat)}
			seeds = append(seeds, home)
		}
		home.members = append(home.members, i)
	}

	clusters := make([]Cluster[M], 0, len(seeds))
	for _, s := range seeds {
		clusters = append(clusters, newCluster(len(clusters), markers, s.members))
	}
	return clusters
}

// radiusAtLatitude scales an equatorial ground distance to lat.
func radiusAtLatitude(radiusKM, lat float64) float64 {
	return radiusKM * math.Cos(lat*math.Pi/180)
}

// aggregates the members into a Cluster with centroid and bounding box.
func newCluster[M Locatable](n int, markers []M, members []int) Cluster[M] {
	firstLat, firstLon := markers[members[0]].Position()
	c := Cluster[M]{
		ID:      fmt.Sprintf("c%d", n),
		Count:   len(members),
		Markers: make([]M, 0, len(members)),
		BoundingBox: types.BoundingBox{
			MinLat: firstLat, MaxLat: firstLat,
			MinLon: firstLon, MaxLon: firstLon,
		},
	}

	var sumLat, sumLon float64
	for _, idx := range members {
		lat, lon := markers[idx].Position()
		c.BoundingBox.Extend(lat, lon)
		sumLat += lat
		sumLon += lon
		c.Markers = append(c.Markers, markers[idx])
	}

	count := float64(len(members))
	c.Lat = sumLat / count
	c.Lon = sumLon / count
	return c
}

// RadiusForZoom converts the pixel cluster radius into kilometres at the
// equator for a zoom level; Group scales it to each seed's latitude. At
// MaxZoom clustering is disabled.
func RadiusForZoom(zoom int) float64 {
	zoom = ClampZoom(zoom)
	if zoom == MaxZoom {
		return 0
	}
	metersPerPixel := metersPerPixelZ0 / math.Pow(2, float64(zoom))
	return clusterRadiusPx * metersPerPixel / 1000
}

func ClampZoom(zoom int) int {
	if zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}

// haversineDistance calculates the great-circle distance between two points
// on the earth (specified in decimal degrees).
func haversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	radLat1 := lat1 * math.Pi / 180
	radLon1 := lon1 * math.Pi / 180
	radLat2 := lat2 * math.Pi / 180
	radLon2 := lon2 * math.Pi / 180

	deltaLat := radLat2 - radLat1
	deltaLon := radLon2 - radLon1

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(radLat1)*math.Cos(radLat2)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}
