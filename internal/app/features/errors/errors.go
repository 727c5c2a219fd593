// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/hopenest/internal/app/system/respond"
)

type notFoundBody struct {
	Error string `json:"error"`
	Path  string `json:"path"`
}

// NotFound answers unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusNotFound, notFoundBody{Error: "Route not found", Path: r.URL.RequestURI()})
}

// MethodNotAllowed answers a known path with the wrong verb. chi has already
// set the Allow header.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
}
