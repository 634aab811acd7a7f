package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/factshare/internal/common"
)

const notFoundMessage = "This link has expired or does not exist."

type mintRequest struct {
	Token string `json:"token"`
}

type aliasResponse struct {
	OK        bool       `json:"ok"`
	Slug      string     `json:"slug,omitempty"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Message   string     `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps service errors onto HTTP status codes and the message shown
// to the caller. Not-found messages never reveal whether a slug expired.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, notFoundMessage
	case errors.Is(err, common.ErrorUnavailable):
		return http.StatusServiceUnavailable, "Short links are temporarily unavailable."
	default:
		return http.StatusInternalServerError, "Internal error."
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := statusOf(err)
	writeJSON(w, status, aliasResponse{OK: false, Message: msg})
}
