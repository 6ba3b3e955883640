package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blubbai/backend/internal/domain"
	"github.com/blubbai/backend/internal/observability/logger"
	"github.com/blubbai/backend/internal/store/core"
)

// Vencimientos fijos por tipo de token.
const (
	AccessTTL           = 10 * time.Minute
	RefreshTTL          = 14 * 24 * time.Hour
	MailVerificationTTL = 12 * time.Hour

	// testTokenTTL: vida útil del token de desarrollo (999999999 ms,
	// ~11.5 días).
	testTokenTTL = 999999999 * time.Millisecond
)

// Errores de Renew; todos terminan en 401 para el cliente.
var (
	ErrRefreshInvalid  = errors.New("refresh token invalid")
	ErrRefreshExpired  = errors.New("refresh token expired")
	ErrRefreshRevoked  = errors.New("refresh token revoked")
	ErrSubjectMismatch = errors.New("refresh/access subject mismatch")
)

// Service emite y renueva tokens. Los refresh tokens se persisten
// como registro en el store; access y mail_verification son stateless.
type Service struct {
	codec *Codec
	repo  core.Repository
	now   func() time.Time
}

// NewService crea el servicio de tokens.
func NewService(codec *Codec, repo core.Repository) *Service {
	return &Service{codec: codec, repo: repo, now: time.Now}
}

// Codec expone el codec subyacente (para los filtros y validateToken).
func (s *Service) Codec() *Codec { return s.codec }

// NewAccess emite un access token de 10 minutos para la cuenta.
func (s *Service) NewAccess(a *domain.Account, twoFactorCompleted bool) (string, error) {
	now := s.now().UTC()
	return s.codec.Encode(Claims{
		Subject:            a.Username,
		IssuedAt:           now,
		ExpiresAt:          now.Add(AccessTTL),
		Kind:               KindAccess,
		UID:                a.UID.String(),
		SecretMethod:       a.SecretMethod,
		TwoFactorCompleted: twoFactorCompleted,
		MailVerified:       a.MailVerified,
	})
}

// NewRefresh emite un refresh token de 14 días y persiste su registro.
func (s *Service) NewRefresh(ctx context.Context, a *domain.Account) (*domain.RefreshToken, error) {
	now := s.now().UTC()
	signed, err := s.codec.Encode(Claims{
		Subject:   a.Username,
		IssuedAt:  now,
		ExpiresAt: now.Add(RefreshTTL),
		Kind:      KindRefresh,
	})
	if err != nil {
		return nil, err
	}
	rt := &domain.RefreshToken{
		AccountUID: a.UID,
		Token:      signed,
		IssuedAt:   now,
		ExpiresAt:  now.Add(RefreshTTL),
	}
	saved, err := s.repo.SaveRefresh(ctx, rt)
	if err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}
	return saved, nil
}

// NewMailVerification emite el token de verificación de mail (12 h).
func (s *Service) NewMailVerification(a *domain.Account) (string, error) {
	now := s.now().UTC()
	return s.codec.Encode(Claims{
		Subject:      a.Username,
		IssuedAt:     now,
		ExpiresAt:    now.Add(MailVerificationTTL),
		Kind:         KindMailVerification,
		UID:          a.UID.String(),
		MailVerified: true,
	})
}

// Renew canjea un refresh token vigente por un access token nuevo.
//
// El access token del header puede venir expirado pero tiene que ser
// de tipo access: sus claims se extraen igual y de ahí se reconstruye
// la cuenta. El refresh token
// en cambio debe tener firma válida, estar vigente y su registro
// persistido no puede estar revocado. Si los subjects no coinciden,
// el canje se rechaza. El token emitido lleva 2fa_completed=true.
func (s *Service) Renew(ctx context.Context, refreshRaw, accessRaw string) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("token"), logger.Op("Renew"))

	accessClaims, err := s.codec.Decode(accessRaw)
	if err != nil || accessClaims.Kind != KindAccess {
		return "", ErrRefreshInvalid
	}

	refreshClaims, err := s.codec.Decode(refreshRaw)
	if err != nil || refreshClaims.Kind != KindRefresh {
		return "", ErrRefreshInvalid
	}
	if refreshClaims.Expired(s.now()) {
		return "", ErrRefreshExpired
	}

	record, err := s.repo.FindRefreshByToken(ctx, refreshRaw)
	if err != nil {
		log.Debug("refresh record not found", logger.Err(err))
		return "", ErrRefreshInvalid
	}
	if record.Revoked {
		log.Info("refresh token revoked", logger.UID(record.AccountUID.String()))
		return "", ErrRefreshRevoked
	}

	if refreshClaims.Subject != accessClaims.Subject {
		return "", ErrSubjectMismatch
	}

	uid, err := uuid.Parse(accessClaims.UID)
	if err != nil {
		return "", ErrRefreshInvalid
	}
	account := &domain.Account{
		UID:          uid,
		Username:     accessClaims.Subject,
		SecretMethod: accessClaims.SecretMethod,
		MailVerified: accessClaims.MailVerified,
	}
	return s.NewAccess(account, true)
}

// NewTestToken emite un token de larga vida para desarrollo.
// Solo debe exponerse detrás del flag de dev tools.
func (s *Service) NewTestToken(username string) (string, error) {
	now := s.now().UTC()
	return s.codec.Encode(Claims{
		Subject:   username,
		IssuedAt:  now,
		ExpiresAt: now.Add(testTokenTTL),
		Kind:      KindAccess,
		UID:       uuid.Nil.String(),
	})
}
