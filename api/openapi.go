package api

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.json
var document []byte

// Document returns a copy of the embedded OpenAPI document. It has the
// signature of info.DocumentProvider.
func Document() ([]byte, error) {
	out := make([]byte, len(document))
	copy(out, document)
	return out, nil
}

// LoadSwagger parses and validates the embedded OpenAPI document. Every call
// returns a fresh value, so callers may mutate it.
func LoadSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	swagger, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := swagger.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return swagger, nil
}
