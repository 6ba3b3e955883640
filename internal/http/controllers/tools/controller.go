// Package tools expone los endpoints utilitarios bajo /tools:
// health check y, detrás del flag de dev, generación de claves y
// tokens de prueba.
package tools

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/blubbai/backend/internal/http/dto"
	httperrors "github.com/blubbai/backend/internal/http/errors"
	"github.com/blubbai/backend/internal/token"
)

// Controller maneja los endpoints de tools. Con DevTools en false,
// /tools/key y /tools/token responden 404.
type Controller struct {
	tokens   *token.Service
	devTools bool
}

func NewController(tokens *token.Service, devTools bool) *Controller {
	return &Controller{tokens: tokens, devTools: devTools}
}

// Health maneja GET /tools/health
func (c *Controller) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Key maneja GET /tools/key: genera una clave HS512 nueva en base64.
// Solo disponible en desarrollo.
func (c *Controller) Key(w http.ResponseWriter, r *http.Request) {
	if !c.devTools {
		httperrors.WriteError(w, httperrors.ErrNotFound)
		return
	}
	key := make([]byte, 64)
	if _, err := rand.Read(key); err != nil {
		httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(base64.StdEncoding.EncodeToString(key)))
}

// Token maneja GET /tools/token: emite un token de prueba de larga
// vida. Solo disponible en desarrollo.
func (c *Controller) Token(w http.ResponseWriter, r *http.Request) {
	if !c.devTools {
		httperrors.WriteError(w, httperrors.ErrNotFound)
		return
	}
	username := r.URL.Query().Get("username")
	if username == "" {
		username = "lupier"
	}
	tk, err := c.tokens.NewTestToken(username)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(dto.AccessToken{Token: tk})
}

// Bearer maneja GET /tools/bearer: devuelve el token crudo del header
// Authorization, o 400 si no viene con esquema Bearer.
func (c *Controller) Bearer(w http.ResponseWriter, r *http.Request) {
	ah := r.Header.Get("Authorization")
	if !strings.HasPrefix(ah, "Bearer ") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("Invalid Authorization header"))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(strings.TrimPrefix(ah, "Bearer ")))
}
