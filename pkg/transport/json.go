package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/nordweb/portal/pkg/api"
)

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads a JSON request body of at most maxBytes into v. Unknown
// fields are rejected. The returned error is ready to be written with
// WriteErrorResponse together with the returned status code.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) (*api.APIError, int) {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			return api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
				http.StatusUnsupportedMediaType
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", maxBytes)),
				http.StatusRequestEntityTooLarge
		case errors.Is(err, io.EOF):
			return api.NewInvalidRequestError("body", "request body is empty"), http.StatusBadRequest
		default:
			return api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()), http.StatusBadRequest
		}
	}
	return nil, 0
}
