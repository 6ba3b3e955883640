// Package auth expone los endpoints de registro, login, tokens y
// segundo factor bajo /api/v1/auth.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/blubbai/backend/internal/domain"
	"github.com/blubbai/backend/internal/http/dto"
	httperrors "github.com/blubbai/backend/internal/http/errors"
	"github.com/blubbai/backend/internal/http/middlewares"
	svc "github.com/blubbai/backend/internal/http/services/auth"
	"github.com/blubbai/backend/internal/metrics"
	"github.com/blubbai/backend/internal/observability/logger"
	"github.com/blubbai/backend/internal/store/core"
	"github.com/blubbai/backend/internal/token"
	"github.com/blubbai/backend/internal/twofa"
)

const (
	maxBodySize     = 64 * 1024 // 64KB
	contentTypeJSON = "application/json; charset=utf-8"
)

// Controller maneja los endpoints de autenticación.
type Controller struct {
	auth   *svc.Service
	tokens *token.Service
	repo   core.Repository
}

// NewController crea el controller de auth.
func NewController(auth *svc.Service, tokens *token.Service, repo core.Repository) *Controller {
	return &Controller{auth: auth, tokens: tokens, repo: repo}
}

// Register maneja POST /api/v1/auth/noa/register
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Register"))

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest)
		return
	}

	created, err := c.auth.Register(ctx, req)
	if err != nil {
		log.Debug("register failed", logger.Err(err))
		writeRegisterError(w, err)
		return
	}

	access, err := c.tokens.NewAccess(created, false)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
		return
	}
	metrics.IncCounter(metrics.TokensIssued, "access")

	writeJSON(w, http.StatusCreated, dto.AccessToken{Token: access})
}

// Login maneja POST /api/v1/auth/noa/login
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Login"))

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest)
		return
	}

	account, err := c.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		log.Debug("login user not found", logger.Username(req.Username))
		metrics.IncCounter(metrics.LoginsTotal, "bad_credentials")
		httperrors.WriteError(w, httperrors.ErrBadUsername.WithStatus(http.StatusUnauthorized))
		return
	}
	if !c.auth.ValidatePassword(ctx, req.Username, req.Password) {
		log.Debug("login password check failed", logger.Username(req.Username))
		metrics.IncCounter(metrics.LoginsTotal, "bad_credentials")
		httperrors.WriteError(w, httperrors.ErrInvalidPassword)
		return
	}

	pair, err := c.mintPair(ctx, account, false)
	if err != nil {
		metrics.IncCounter(metrics.LoginsTotal, "error")
		httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
		return
	}

	metrics.IncCounter(metrics.LoginsTotal, "ok")
	log.Info("login successful", logger.Username(req.Username))
	writeJSON(w, http.StatusOK, pair)
}

// GetTwoFactor maneja GET /api/v1/auth/no2fa/2fa
//
// Primer enrolamiento con AUTHENTICATOR devuelve la URI del QR como
// cuerpo plano; con los otros métodos despacha el código y devuelve
// 200 vacío.
func (c *Controller) GetTwoFactor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("GetTwoFactor"))

	account, err := c.principalAccount(ctx)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrUserNotFound)
		return
	}

	var method domain.Method2FA
	if q := r.URL.Query().Get("method"); q != "" {
		m, err := domain.ParseMethod2FA(q)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrBadRequest)
			return
		}
		method = m
	} else {
		if account.SecretMethod == nil {
			httperrors.WriteError(w, httperrors.ErrMethodNotSet.WithStatus(http.StatusBadRequest))
			return
		}
		method = *account.SecretMethod
	}

	if account.SecretMethod == nil && method == domain.MethodAuthenticator {
		if err := c.auth.SetSecretMethod(ctx, account, method); err != nil {
			httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
			return
		}
		uri := c.auth.QRCodeURI(account)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(uri))
		return
	}

	if method != domain.MethodAuthenticator {
		if account.SecretMethod == nil {
			if err := c.auth.SetSecretMethod(ctx, account, method); err != nil {
				httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
				return
			}
		}
		if err := c.auth.Send2FACode(ctx, account, method); err != nil {
			// Sin teléfono cargado no hay canal SMS: es un problema de
			// datos del usuario, no una falla del servicio.
			if errors.Is(err, twofa.ErrNoPhoneNumber) {
				log.Debug("sms requested without phone number", logger.Username(account.Username))
				httperrors.WriteError(w, httperrors.ErrBadPhone)
				return
			}
			log.Error("2fa dispatch failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

// VerifyTwoFactor maneja POST /api/v1/auth/no2fa/2fa?code=
func (c *Controller) VerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("VerifyTwoFactor"))

	code := r.URL.Query().Get("code")
	if code == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest)
		return
	}

	account, err := c.principalAccount(ctx)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrUserNotFound)
		return
	}
	if account.SecretMethod == nil {
		metrics.IncCounter(metrics.TwoFactorTotal, "no_method")
		httperrors.WriteError(w, httperrors.ErrMethodNotSet)
		return
	}

	if !c.auth.Verify2FACode(account, code) {
		log.Debug("2fa code rejected", logger.Username(account.Username))
		metrics.IncCounter(metrics.TwoFactorTotal, "bad_code")
		httperrors.WriteError(w, httperrors.ErrInvalid2FA)
		return
	}

	pair, err := c.mintPair(ctx, account, true)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
		return
	}

	metrics.IncCounter(metrics.TwoFactorTotal, "ok")
	log.Info("2fa verified", logger.Username(account.Username))
	writeJSON(w, http.StatusOK, pair)
}

// ValidateToken maneja POST /api/v1/auth/noa/validateToken
func (c *Controller) ValidateToken(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	var req dto.AccessToken
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, dto.ValidateResult(c.tokens.Codec().IsValid(req.Token)))
}

// RenewToken maneja POST /api/v1/auth/noa/renewToken
//
// El body trae el refresh token; el header Authorization trae el
// access token, que puede venir vencido.
func (c *Controller) RenewToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RenewToken"))

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	var req dto.AccessToken
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.WriteError(w, httperrors.ErrBadRequest)
		return
	}

	accessRaw := bearerToken(r)
	if accessRaw == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	renewed, err := c.tokens.Renew(ctx, req.Token, accessRaw)
	if err != nil {
		log.Debug("token renewal rejected", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrTokenExpired)
		return
	}

	metrics.IncCounter(metrics.TokensIssued, "access")
	writeJSON(w, http.StatusOK, dto.AccessToken{Token: renewed})
}

// VerifyMail maneja PATCH /api/v1/auth/noa/2fa/verifyMail?uuid=
// Idempotente: una cuenta ya verificada responde 200.
func (c *Controller) VerifyMail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := r.URL.Query().Get("uuid")
	if raw == "" {
		httperrors.WriteError(w, httperrors.ErrBadUsername)
		return
	}
	uid, err := uuid.Parse(raw)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrUserNotFound)
		return
	}

	if err := c.auth.VerifyMail(ctx, uid); err != nil {
		if errors.Is(err, svc.ErrUserNotFound) {
			httperrors.WriteError(w, httperrors.ErrUserNotFound)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ─── Helpers ───

// principalAccount resuelve la cuenta del principal del contexto.
func (c *Controller) principalAccount(ctx context.Context) (*domain.Account, error) {
	claims := middlewares.Principal(ctx)
	if claims == nil {
		return nil, core.ErrNotFound
	}
	return c.repo.FindByUsername(ctx, claims.Subject)
}

// mintPair emite access + refresh para la cuenta.
func (c *Controller) mintPair(ctx context.Context, a *domain.Account, twoFactorCompleted bool) (*dto.TokenPair, error) {
	access, err := c.tokens.NewAccess(a, twoFactorCompleted)
	if err != nil {
		return nil, err
	}
	refresh, err := c.tokens.NewRefresh(ctx, a)
	if err != nil {
		return nil, err
	}
	metrics.IncCounter(metrics.TokensIssued, "access")
	metrics.IncCounter(metrics.TokensIssued, "refresh")
	return &dto.TokenPair{
		Token:        dto.AccessToken{Token: access},
		RefreshToken: refresh,
	}, nil
}

func writeRegisterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrUsernameTaken):
		httperrors.WriteError(w, httperrors.ErrUsernameConflict)
	case errors.Is(err, svc.ErrEmailTaken):
		httperrors.WriteError(w, httperrors.ErrBadEmail.WithStatus(http.StatusConflict))
	case errors.Is(err, svc.ErrBadUsername):
		httperrors.WriteError(w, httperrors.ErrBadUsername)
	case errors.Is(err, svc.ErrBadEmail), errors.Is(err, svc.ErrMailSendFailed):
		httperrors.WriteError(w, httperrors.ErrBadEmail)
	case errors.Is(err, svc.ErrBadPhone):
		httperrors.WriteError(w, httperrors.ErrBadPhone)
	default:
		httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func bearerToken(r *http.Request) string {
	ah := r.Header.Get("Authorization")
	if len(ah) > 7 && (ah[:7] == "Bearer " || ah[:7] == "bearer ") {
		return ah[7:]
	}
	return ""
}
