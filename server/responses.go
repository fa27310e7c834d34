package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/go-oauth-grants/internal/errors"
	"github.com/rs/zerolog"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Errno reported for errors that are not an AppError.
const errnoUnexpected = 999

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps err to the {code, errno, error, message} error body.
// Info fields of an AppError are added alongside.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("unexpected error")
		appErr = &apperrors.AppError{
			Errno:   errnoUnexpected,
			Status:  http.StatusInternalServerError,
			Code:    "Internal Server Error",
			Message: "Unspecified error",
		}
	}

	body := make(map[string]any, len(appErr.Info)+4)
	for k, v := range appErr.Info {
		body[k] = v
	}
	body["code"] = appErr.Status
	body["errno"] = appErr.Errno
	body["error"] = appErr.Code
	body["message"] = appErr.Message
	writeJSON(w, appErr.Status, body)
}
