package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/ocrdesk/internal/common"
	"github.com/dmitrijs2005/ocrdesk/internal/server/models"
)

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Name: u.Name, Email: u.Email}
}

type loginResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeError maps service errors onto status codes. Internal errors are
// logged and never shown to the caller.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		detail := strings.TrimPrefix(err.Error(), common.ErrorValidation.Error()+": ")
		writeDetail(w, http.StatusBadRequest, detail)
	case errors.Is(err, common.ErrorAlreadyExists):
		writeDetail(w, http.StatusConflict, "A user with that username or email already exists.")
	case errors.Is(err, common.ErrorUnauthorized):
		writeDetail(w, http.StatusUnauthorized, "Invalid username or password.")
	case errors.Is(err, common.ErrTokenExpired):
		writeDetail(w, http.StatusUnauthorized, "Token has expired.")
	case errors.Is(err, common.ErrTokenRevoked), errors.Is(err, common.ErrInvalidToken):
		writeDetail(w, http.StatusUnauthorized, "Given token not valid.")
	case errors.Is(err, common.ErrorNotFound):
		writeDetail(w, http.StatusNotFound, "Not found.")
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error.")
	}
}
