package server

import (
	"encoding/json"
	"io"
	"net/http"

	cferrors "github.com/matzehuels/canvasflow/pkg/errors"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 4 << 20

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string        `json:"error"`
	Message string        `json:"message"`
	Code    cferrors.Code `json:"code,omitempty"`
	Status  int           `json:"status"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

// respondError writes err with the status its code maps to.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: cferrors.UserMessage(err),
		Code:    cferrors.GetCode(err),
		Status:  status,
	})
}

func statusFor(err error) int {
	switch cferrors.GetCode(err) {
	case cferrors.ErrCodeInvalidInput, cferrors.ErrCodeInvalidFormat, cferrors.ErrCodeInvalidID:
		return http.StatusBadRequest
	case cferrors.ErrCodeShapeMismatch, cferrors.ErrCodeDanglingReference:
		return http.StatusUnprocessableEntity
	case cferrors.ErrCodeNotFound, cferrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case cferrors.ErrCodeSessionLimit:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON body into v. Unknown fields are rejected.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if cferrors.GetCode(err) != "" {
			return err
		}
		return cferrors.New(cferrors.ErrCodeInvalidInput, "invalid request body: %v", err)
	}
	return nil
}
