package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/poetry-platform/internal/platform/httpserver"
)

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

// poemIDParam parses the {poemID} path segment as a positive integer.
func poemIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "poemID")), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func requestID(r *http.Request) string {
	return httpserver.RequestIDFromContext(r.Context())
}
