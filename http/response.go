package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/filegate"
)

// Detail messages returned for non-validation errors.
const (
	DetailNotFound      = "File not found"
	DetailTooLarge      = "File too large"
	DetailInternalError = "Internal Server Error"
)

// PutFileResponse is returned by a successful upload.
type PutFileResponse struct {
	FilePath string `json:"file_path"`
	Message  string `json:"message"`
}

// GetFilesResponse is one page of a file listing. NextPageToken is null on
// the last page.
type GetFilesResponse struct {
	Files         []filegate.FileMetadata `json:"files"`
	NextPageToken *string                 `json:"next_page_token"`
}

// ErrorResponse is the body of 404, 413 and 500 responses.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// FieldErrorResponse describes a single rejected input.
type FieldErrorResponse struct {
	Type  string   `json:"type"`
	Loc   []string `json:"loc"`
	Msg   string   `json:"msg"`
	Input any      `json:"input"`
}

// ValidationErrorResponse is the body of 422 responses.
type ValidationErrorResponse struct {
	Detail []FieldErrorResponse `json:"detail"`
}

// ErrorResponseFor maps err to a status code and response body. Backend error
// text never reaches the body.
func ErrorResponseFor(err error) (int, any) {
	var verr *filegate.ValidationError
	switch {
	case errors.As(err, &verr):
		detail := make([]FieldErrorResponse, len(verr.Errors))
		for i, fe := range verr.Errors {
			detail[i] = FieldErrorResponse{
				Type:  string(fe.Kind),
				Loc:   fe.Loc,
				Msg:   fe.Msg,
				Input: fe.Input,
			}
		}
		return http.StatusUnprocessableEntity, ValidationErrorResponse{Detail: detail}
	case errors.Is(err, filegate.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Detail: DetailNotFound}
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Detail: DetailTooLarge}
	default:
		return http.StatusInternalServerError, ErrorResponse{Detail: DetailInternalError}
	}
}

// HandleError writes the response for err. Server errors are logged at error
// level, client errors at debug.
func HandleError(w http.ResponseWriter, err error) {
	code, body := ErrorResponseFor(err)

	if code >= http.StatusInternalServerError {
		slog.Error("request error", "error", err)
	} else {
		slog.Debug("request rejected", "status", code, "error", err)
	}

	if writeErr := WriteJSON(w, code, body); writeErr != nil {
		slog.Error("failed to encode error response", "error", writeErr)
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
