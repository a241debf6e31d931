// Package swagger serves the embedded OpenAPI description of the HTTP API.
package swagger

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/goccy/go-json"
	"github.com/knadh/koanf/parsers/yaml"
)

// ErrServe is returned when the embedded document cannot be rendered.
var ErrServe = errors.New("swagger serve failed")

// Register attaches the OpenAPI routes to mux.
// Routes:
//
//	GET /openapi.yaml -> embedded spec as written
//	GET /openapi.json -> the same spec converted to JSON
func Register(mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})

	mux.HandleFunc("/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		doc, err := JSON()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(doc)
	})
}

var (
	jsonOnce sync.Once
	jsonDoc  []byte
	jsonErr  error
)

// JSON returns the embedded spec encoded as JSON. It is rendered once.
func JSON() ([]byte, error) {
	jsonOnce.Do(func() {
		tree, err := yaml.Parser().Unmarshal(OpenAPI)
		if err != nil {
			jsonErr = fmt.Errorf("%w: %w", ErrServe, err)
			return
		}
		jsonDoc, jsonErr = json.Marshal(tree)
		if jsonErr != nil {
			jsonErr = fmt.Errorf("%w: %w", ErrServe, jsonErr)
		}
	})
	return jsonDoc, jsonErr
}
