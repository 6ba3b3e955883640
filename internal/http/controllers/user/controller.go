// Package user expone los endpoints de perfil bajo /api/v1/user.
package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/blubbai/backend/internal/http/dto"
	httperrors "github.com/blubbai/backend/internal/http/errors"
	"github.com/blubbai/backend/internal/http/middlewares"
	svc "github.com/blubbai/backend/internal/http/services/user"
	"github.com/blubbai/backend/internal/observability/logger"
)

const (
	maxBodySize     = 64 * 1024 // 64KB
	contentTypeJSON = "application/json; charset=utf-8"
)

// Controller maneja los endpoints de perfil.
type Controller struct {
	users *svc.Service
}

func NewController(users *svc.Service) *Controller {
	return &Controller{users: users}
}

// Get maneja GET /api/v1/user
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims := middlewares.Principal(ctx)
	if claims == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	account, err := c.users.Get(ctx, claims.Subject)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrUserNotFound)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// Update maneja PUT /api/v1/user/update?oldPassword=
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Update"))

	claims := middlewares.Principal(ctx)
	if claims == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	oldPassword := r.URL.Query().Get("oldPassword")
	if oldPassword == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	var req dto.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest)
		return
	}

	updated, err := c.users.Update(ctx, claims.Subject, oldPassword, req)
	if err != nil {
		log.Debug("update failed", logger.Err(err))
		switch {
		case errors.Is(err, svc.ErrUserNotFound):
			httperrors.WriteError(w, httperrors.ErrUserNotFound)
		case errors.Is(err, svc.ErrInvalidPassword):
			httperrors.WriteError(w, httperrors.ErrInvalidPassword)
		case errors.Is(err, svc.ErrBadEmail):
			httperrors.WriteError(w, httperrors.ErrBadEmail)
		case errors.Is(err, svc.ErrBadPhone):
			httperrors.WriteError(w, httperrors.ErrBadPhone)
		default:
			httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete maneja DELETE /api/v1/user/delete
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims := middlewares.Principal(ctx)
	if claims == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	if err := c.users.Delete(ctx, claims.Subject); err != nil {
		if errors.Is(err, svc.ErrUserNotFound) {
			httperrors.WriteError(w, httperrors.ErrUserNotFound)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
