// Package spatial parses and validates the GeoJSON handled by the API:
// project boundaries, treatment unit uploads and search bounding boxes.
package spatial

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/bcgov/restoration-tracker/pkg/model"
)

// ErrInvalidBoundingBox is returned for a malformed bbox parameter
var ErrInvalidBoundingBox = errors.New("invalid bounding box")

var worldBound = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// GeometryCollection combines the geometries of every feature into a
// single GeoJSON GeometryCollection suitable for ST_GeomFromGeoJSON.
// It returns an empty string when fc holds no geometry.
func GeometryCollection(fc *geojson.FeatureCollection) (string, error) {
	if fc == nil {
		return "", nil
	}

	var collection orb.Collection
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		collection = append(collection, f.Geometry)
	}
	if len(collection) == 0 {
		return "", nil
	}

	data, err := geojson.NewGeometry(collection).MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode geometry: %w", err)
	}
	return string(data), nil
}

// ValidateBoundary returns one message per problem found in a project
// boundary.
func ValidateBoundary(fc *geojson.FeatureCollection) []string {
	if fc == nil {
		return nil
	}

	var problems []string
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			problems = append(problems, fmt.Sprintf("feature %d: missing geometry", i))
			continue
		}
		if !withinWorld(f.Geometry) {
			problems = append(problems, fmt.Sprintf("feature %d: coordinates are not longitude/latitude", i))
		}
	}
	return problems
}

func withinWorld(g orb.Geometry) bool {
	b := g.Bound()
	return worldBound.Contains(b.Min) && worldBound.Contains(b.Max)
}

// ParseBoundingBox parses "minLon,minLat,maxLon,maxLat".
func ParseBoundingBox(s string) (*model.BoundingBox, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: expected 4 values, got %d", ErrInvalidBoundingBox, len(parts))
	}

	values := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidBoundingBox, p)
		}
		values[i] = v
	}

	bbox := &model.BoundingBox{MinLon: values[0], MinLat: values[1], MaxLon: values[2], MaxLat: values[3]}
	if bbox.MinLon > bbox.MaxLon || bbox.MinLat > bbox.MaxLat {
		return nil, fmt.Errorf("%w: minimum exceeds maximum", ErrInvalidBoundingBox)
	}
	if !worldBound.Contains(orb.Point{bbox.MinLon, bbox.MinLat}) || !worldBound.Contains(orb.Point{bbox.MaxLon, bbox.MaxLat}) {
		return nil, fmt.Errorf("%w: out of range", ErrInvalidBoundingBox)
	}
	return bbox, nil
}
