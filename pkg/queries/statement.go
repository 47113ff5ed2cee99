// Package queries builds the parameterized SQL statements executed by the
// stores. Builders are pure: they validate their required parameters and
// return ErrMissingParameter without a statement when one is absent.
package queries

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingParameter is returned when a required builder parameter is absent
var ErrMissingParameter = errors.New("missing required parameter")

// Statement is a SQL string with "?" placeholders and its arguments.
type Statement struct {
	SQL  string
	Args []interface{}
}

func missing(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingParameter, name)
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(i int) interface{} {
	if i == 0 {
		return nil
	}
	return i
}

// geographyExpr converts a GeoJSON geometry argument into a WGS84 geography.
const geographyExpr = `public.geography(public.ST_Force2D(public.ST_SetSRID(public.ST_GeomFromGeoJSON(?), 4326)))`

// whereBuilder accumulates AND-ed conditions.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

func (w *whereBuilder) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, "\n  AND ")
}

// valuesList renders n rows of the given row template, e.g. "(?, ?)".
func valuesList(row string, n int) string {
	rows := make([]string, n)
	for i := range rows {
		rows[i] = row
	}
	return strings.Join(rows, ", ")
}
