// Package shared holds the JSON plumbing every handler uses: one error
// envelope, one encoder, one decoder. Keeping it in one place is what makes
// the error contract uniform across the API.
package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "careflow/pkg/domain-errors"
)

// maxBodyBytes caps request bodies; nothing this API accepts is large.
const maxBodyBytes = 1 << 20

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError translates a domain error into the JSON error envelope. Unknown
// error types become a plain 500 without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	status := http.StatusInternalServerError
	code := string(dErrors.CodeInternal)
	message := "internal error"
	if errors.As(err, &domainErr) {
		status = dErrors.ToHTTPStatus(domainErr.Code)
		code = string(domainErr.Code)
		message = domainErr.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads a request body into v, rejecting oversized and malformed
// payloads with CodeInvalidInput.
func DecodeJSON(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer func() { _, _ = io.Copy(io.Discard, body) }()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid request body")
	}
	return nil
}
