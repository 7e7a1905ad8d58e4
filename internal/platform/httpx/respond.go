package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes bounds request bodies read by DecodeJSON.
const maxBodyBytes = 64 << 10

// ProblemDetail is an RFC7807 problem document.
type ProblemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// JSON encodes data before writing so an encoding failure still yields a
// clean 500.
func JSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, "application/json", data)
}

// Problem writes an RFC7807 response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	writeJSON(w, status, "application/problem+json", ProblemDetail{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

func writeJSON(w http.ResponseWriter, status int, contentType string, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// DecodeJSON reads one JSON value from the request body into target.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes+1))
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("httpx: decode body: %w", err)
	}
	if dec.More() {
		return errors.New("httpx: body holds more than one JSON value")
	}
	return nil
}
