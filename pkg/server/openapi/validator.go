// Package openapi validates API requests against the embedded OpenAPI 3
// document before they reach a handler.
package openapi

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/bcgov/restoration-tracker/pkg/apierror"
)

//go:embed openapi.yaml
var document []byte

// Document returns the embedded OpenAPI document.
func Document() []byte {
	return document
}

// Validator checks requests against an OpenAPI document.
type Validator struct {
	doc    *openapi3.T
	router routers.Router
}

// NewValidator loads the embedded document.
func NewValidator() (*Validator, error) {
	return NewValidatorFromData(document)
}

// NewValidatorFromData loads and validates an OpenAPI document.
func NewValidatorFromData(data []byte) (*Validator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build OpenAPI router: %w", err)
	}

	return &Validator{doc: doc, router: router}, nil
}

// Validate checks r and returns an HTTP400 listing every problem. Requests
// the document does not describe are not validated.
func (v *Validator) Validate(ctx context.Context, r *http.Request) error {
	route, pathParams, err := v.router.FindRoute(r)
	if err != nil {
		// Unknown paths are left to the mux router.
		return nil
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			MultiError:         true,
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}
	if err := openapi3filter.ValidateRequest(ctx, input); err != nil {
		return apierror.BadRequest("Request validation failed", messages(err)...)
	}
	return nil
}

// Middleware rejects invalid requests with HTTP400.
func (v *Validator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := v.Validate(r.Context(), r); err != nil {
			apierror.Write(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// messages flattens nested validation errors into one message each.
func messages(err error) []string {
	if multi, ok := err.(openapi3.MultiError); ok {
		var out []string
		for _, e := range multi {
			out = append(out, messages(e)...)
		}
		return out
	}

	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		if nested, ok := reqErr.Err.(openapi3.MultiError); ok {
			prefix := "request body"
			if reqErr.Parameter != nil {
				prefix = fmt.Sprintf("parameter %q in %s", reqErr.Parameter.Name, reqErr.Parameter.In)
			}
			var out []string
			for _, m := range messages(nested) {
				out = append(out, prefix+": "+m)
			}
			return out
		}
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		if ptr := schemaErr.JSONPointer(); len(ptr) > 0 {
			return []string{fmt.Sprintf("/%s: %s", strings.Join(ptr, "/"), schemaErr.Reason)}
		}
	}

	return []string{err.Error()}
}
