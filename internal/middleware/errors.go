package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/sealdrop/sealdrop/internal/apperr"
)

// writeError writes the API error body {"error": message} with the status of kind.
func writeError(w http.ResponseWriter, kind apperr.Kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(kind.HTTPStatus())
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
