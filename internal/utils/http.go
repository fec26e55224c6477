package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrTrailingData is returned by [DecodeJSON] when the input holds more
// than one JSON value.
var ErrTrailingData = errors.New("unexpected data after JSON value")

// WriteJSON marshals data and writes it with statusCode. A value that
// cannot be marshaled produces a 500 and an error; nothing else is written.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return w.Write(body)
}

// DecodeJSON reads exactly one JSON value from r into v. Unknown object
// fields and trailing data are errors.
func DecodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}
	return nil
}

// IsBlank reports whether data holds nothing but whitespace.
func IsBlank(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}
