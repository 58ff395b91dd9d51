package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/matzehuels/orgtower/pkg/errors"
)

// maxBodyBytes bounds request bodies; events and session requests are tiny.
const maxBodyBytes = 64 << 10

type errResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps coded errors to their HTTP status. Internal errors are
// not echoed to the client.
func writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	body := errResponse{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))}
	if status == http.StatusInternalServerError {
		body = errResponse{Error: "internal error", Code: string(errors.ErrCodeInternal)}
	}
	writeJSON(w, status, body)
}

// readJSON decodes the request body into v. An empty body leaves v as is.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}
