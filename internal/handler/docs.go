package handler

import (
	"net/http"

	"github.com/pkordes/ride-dispatch/spec"
)

// GetOpenAPI handles GET /openapi.yaml, serving the embedded API document.
func GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.OpenAPI)
}
