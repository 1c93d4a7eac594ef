package handlers

import (
	"errors"
	"net/http"

	"github.com/korobprog/supermock-app-sub000/internal/repositories"
	"github.com/korobprog/supermock-app-sub000/internal/utils"
)

// writeError maps the core error taxonomy 1:1 onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repositories.ErrValidation):
		utils.JSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repositories.ErrConflict):
		utils.JSONError(w, http.StatusConflict, err.Error())
	default:
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
	}
}
