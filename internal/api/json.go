package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

const maxBodyBytes = 10 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// readJSON decodes a size-limited request body into v. On failure it has
// already answered 400 and returns false.
func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// setETag publishes a document checksum as a strong entity tag.
func setETag(w http.ResponseWriter, checksum string) {
	w.Header().Set("ETag", `"`+checksum+`"`)
}

// ifMatchChecksum returns the checksum of an If-Match header, with or
// without quotes and the weak prefix.
func ifMatchChecksum(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("If-Match"))
	v = strings.TrimPrefix(v, "W/")
	return strings.Trim(v, `"`)
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}
