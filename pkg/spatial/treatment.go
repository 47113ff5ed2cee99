package spatial

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/bcgov/restoration-tracker/pkg/model"
)

// Treatment feature property names
const (
	PropID         = "ID"
	PropWidth      = "Width_m"
	PropLength     = "Length_m"
	PropArea       = "Area_ha"
	PropYear       = "Year"
	PropTreatments = "Treatments"
	PropComments   = "Comments"
)

// ParseTreatmentUnits decodes a treatment upload. knownTypes maps lower-cased
// treatment type names to their ids. Every invalid feature is reported;
// units are only returned when there are no problems.
func ParseTreatmentUnits(data []byte, knownTypes map[string]int) ([]model.TreatmentUnit, []string) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, []string{fmt.Sprintf("invalid GeoJSON: %v", err)}
	}
	if len(fc.Features) == 0 {
		return nil, []string{"no features found"}
	}

	var (
		units    []model.TreatmentUnit
		problems []string
	)
	for i, f := range fc.Features {
		unit, errs := parseTreatmentFeature(f, knownTypes)
		for _, e := range errs {
			problems = append(problems, fmt.Sprintf("feature %d: %s", i, e))
		}
		if len(errs) == 0 {
			units = append(units, unit)
		}
	}

	if len(problems) > 0 {
		return nil, problems
	}
	return units, nil
}

func parseTreatmentFeature(f *geojson.Feature, knownTypes map[string]int) (model.TreatmentUnit, []string) {
	var (
		unit model.TreatmentUnit
		errs []string
	)

	switch f.Geometry.(type) {
	case orb.Polygon, orb.MultiPolygon:
		geometry, err := geojson.NewGeometry(f.Geometry).MarshalJSON()
		if err != nil {
			errs = append(errs, "geometry could not be encoded")
		}
		unit.GeoJSON = geometry
		if !withinWorld(f.Geometry) {
			errs = append(errs, "coordinates are not longitude/latitude")
		}
	case nil:
		errs = append(errs, "missing geometry")
	default:
		errs = append(errs, fmt.Sprintf("geometry must be a Polygon or MultiPolygon, got %s", f.Geometry.GeoJSONType()))
	}

	unit.UnitID = propertyString(f.Properties, PropID)
	if unit.UnitID == "" {
		errs = append(errs, "missing "+PropID)
	}

	year, ok := propertyInt(f.Properties, PropYear)
	if !ok || year < 1900 || year > 2100 {
		errs = append(errs, "missing or invalid "+PropYear)
	}
	unit.Year = year

	unit.Width = f.Properties.MustFloat64(PropWidth, 0)
	unit.Length = f.Properties.MustFloat64(PropLength, 0)
	unit.Area = f.Properties.MustFloat64(PropArea, 0)
	unit.Comments = propertyString(f.Properties, PropComments)

	for _, name := range strings.Split(propertyString(f.Properties, PropTreatments), ";") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := knownTypes[strings.ToLower(name)]; !ok {
			errs = append(errs, fmt.Sprintf("unknown treatment type %q", name))
			continue
		}
		unit.TypeNames = append(unit.TypeNames, name)
	}
	if len(unit.TypeNames) == 0 {
		errs = append(errs, "missing "+PropTreatments)
	}

	return unit, errs
}

func propertyString(p geojson.Properties, key string) string {
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func propertyInt(p geojson.Properties, key string) (int, bool) {
	switch v := p[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		return i, err == nil
	}
	return 0, false
}
