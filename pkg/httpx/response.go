package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Envelope is the stable wire shape for every response. Clients rely on
// success/error/statusCode never changing.
type Envelope struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// WriteData writes {"success":true,"data":...} with the given status code.
func WriteData(w http.ResponseWriter, code int, v any) {
	writeJSON(w, code, Envelope{Success: true, Data: v})
}

// WriteError writes {"success":false,"error":...,"statusCode":...}.
func WriteError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, Envelope{Success: false, Error: msg, StatusCode: code})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache prevents caching of sensitive responses such as tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// MaxBodyBytes caps request bodies accepted by DecodeJSON.
const MaxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

// DecodeJSON reads and decodes a JSON request body into dst. Callers map a
// returned error to a 400 validation failure.
func DecodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	// A JSON body is a single value; trailing data is malformed input.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid request body: trailing data")
	}
	return nil
}
