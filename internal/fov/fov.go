// Package fov builds instrument field-of-view polygons in geostationary
// projection coordinates.
//
// View angles come from the GOES-R Series Data Book: the ABI full-disk
// field of view is 17.4 degrees, the GLM lens field of view is 16 degrees.
// Polygons are centered on the sub-satellite point with vertices in meters
// on the projection plane; reprojecting them to longitude and latitude is
// the caller's business.
package fov

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

const (
	// The full-disk angle is trimmed a little to account for the
	// imprecise ellipsoid edge.
	abiViewDegrees = 17.4 - 0.06

	glmViewDegrees = 16.0

	// The GLM sensor is masked to a roughly 15 degree square inside
	// its circular lens.
	glmSquareDegrees = 15.0

	// Vertices per full circle, and points per square side.
	circleSegments = 240
	squareSide     = 60
)

// FieldOfView is one instrument's view footprint.
type FieldOfView struct {
	Instrument string
	NadirLon   float64
	NadirLat   float64
	// Height is the satellite height above the ellipsoid in meters.
	Height float64
	// Polygon is the footprint in geostationary projection meters,
	// centered on the sub-satellite point.
	Polygon orb.Polygon
}

// ABI returns the Advanced Baseline Imager full-disk footprint for a
// satellite at the given nadir position and height.
func ABI(nadirLon, nadirLat, heightMeters float64) *FieldOfView {
	return &FieldOfView{
		Instrument: "ABI",
		NadirLon:   nadirLon,
		NadirLat:   nadirLat,
		Height:     heightMeters,
		Polygon:    orb.Polygon{circle(viewRadius(abiViewDegrees, heightMeters))},
	}
}

// GLM returns the Geostationary Lightning Mapper footprint: the circular
// lens view clipped to the square sensor mask.
func GLM(nadirLon, nadirLat, heightMeters float64) *FieldOfView {
	lens := orb.Polygon{circle(viewRadius(glmViewDegrees, heightMeters))}
	half := viewRadius(glmSquareDegrees, heightMeters)
	mask := orb.Bound{Min: orb.Point{-half, -half}, Max: orb.Point{half, half}}
	return &FieldOfView{
		Instrument: "GLM",
		NadirLon:   nadirLon,
		NadirLat:   nadirLat,
		Height:     heightMeters,
		Polygon:    clip.Polygon(mask, lens),
	}
}

// Bound returns the footprint's bounding box in projection meters.
func (f *FieldOfView) Bound() orb.Bound { return f.Polygon.Bound() }

// Area returns the footprint area in square meters.
func (f *FieldOfView) Area() float64 { return planar.Area(f.Polygon) }

// Contains reports whether the projection-plane point p falls inside the
// footprint.
func (f *FieldOfView) Contains(p orb.Point) bool {
	return planar.PolygonContains(f.Polygon, p)
}

// GeoJSON renders the footprint as a GeoJSON feature. The coordinates are
// projection meters rather than longitude and latitude, so the feature
// properties carry the projection parameters a consumer needs to
// reproject them.
func (f *FieldOfView) GeoJSON() ([]byte, error) {
	feat := geojson.NewFeature(f.Polygon)
	feat.Properties = geojson.Properties{
		"instrument":         f.Instrument,
		"crs":                "geostationary",
		"units":              "m",
		"nadir_longitude":    f.NadirLon,
		"nadir_latitude":     f.NadirLat,
		"satellite_height_m": f.Height,
	}
	return feat.MarshalJSON()
}

// viewRadius converts a view angle to a radius on the projection plane.
func viewRadius(viewDegrees, heightMeters float64) float64 {
	return viewDegrees / 2 * math.Pi / 180 * heightMeters
}

// circle returns a closed counterclockwise ring of circleSegments vertices
// around the origin.
func circle(radius float64) orb.Ring {
	ring := make(orb.Ring, 0, circleSegments+1)
	for i := 0; i < circleSegments; i++ {
		theta := 2 * math.Pi * float64(i) / circleSegments
		ring = append(ring, orb.Point{radius * math.Cos(theta), radius * math.Sin(theta)})
	}
	ring = append(ring, ring[0])
	return ring
}
