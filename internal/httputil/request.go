package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// ParseJSON decodes a JSON request body into dst, rejecting bodies
// over 1 MB and anything after the first JSON value.
func ParseJSON(r *http.Request, w http.ResponseWriter, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	// A second value after the first object is malformed input.
	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}

	return nil
}
