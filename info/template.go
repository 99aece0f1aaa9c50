package info

import (
	_ "embed"
	"html/template"
	"strings"
)

//go:embed assets/stoplight.html
var openapiHTMLStoplight []byte

var stoplightTemplate = template.Must(
	template.New("openapi-stoplight").Parse(string(openapiHTMLStoplight)),
)

// OpenAPISpecURL returns the location of the OpenAPI document relative to
// baseURL.
func OpenAPISpecURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + OpenAPIPath
}
