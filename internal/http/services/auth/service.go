// Package auth implementa las operaciones de registro, credenciales
// y segundo factor sobre el store de cuentas.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/blubbai/backend/internal/domain"
	"github.com/blubbai/backend/internal/email"
	"github.com/blubbai/backend/internal/http/dto"
	"github.com/blubbai/backend/internal/observability/logger"
	"github.com/blubbai/backend/internal/security/password"
	"github.com/blubbai/backend/internal/security/totp"
	"github.com/blubbai/backend/internal/store/core"
	"github.com/blubbai/backend/internal/twofa"
	"github.com/blubbai/backend/internal/validation"
)

// Errores de negocio del servicio; los controllers los mapean al
// catálogo de http/errors.
var (
	ErrUsernameTaken  = fmt.Errorf("username already taken")
	ErrEmailTaken     = fmt.Errorf("email already registered")
	ErrBadUsername    = fmt.Errorf("username not acceptable")
	ErrBadEmail       = fmt.Errorf("email rejected")
	ErrBadPhone       = fmt.Errorf("phone rejected")
	ErrUserNotFound   = fmt.Errorf("user not found")
	ErrMethodNotSet   = fmt.Errorf("no 2fa method set")
	ErrMethodUnknown  = fmt.Errorf("unknown 2fa method")
	ErrStoreFailed    = fmt.Errorf("store operation failed")
	ErrMailSendFailed = fmt.Errorf("verification mail failed")
)

// Deps contiene las dependencias del auth service.
type Deps struct {
	Repo       core.Repository
	HashParams password.Params
	Validator  validation.Validator
	Dispatcher *twofa.Dispatcher
	Mailer     *email.Mailer
	Platform   string // PLATFORM_NAME, label del QR
}

type Service struct {
	deps Deps
}

// NewService crea el auth service.
func NewService(deps Deps) *Service {
	return &Service{deps: deps}
}

// Register da de alta una cuenta. En orden: rechaza username tomado,
// mail inválido o ya registrado y teléfono inválido; persiste el
// teléfono; hashea el password; persiste la cuenta (el store genera
// uid, secret TOTP y timestamps) y despacha el mail de verificación.
func (s *Service) Register(ctx context.Context, in dto.RegisterRequest) (*domain.Account, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Register"),
		logger.Username(in.Username),
	)

	if in.Username == "" || in.Password == "" {
		return nil, ErrBadUsername
	}

	if _, err := s.deps.Repo.FindByUsername(ctx, in.Username); err == nil {
		log.Debug("username already exists")
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}

	valid, err := s.deps.Validator.ValidEmail(ctx, in.Email)
	if err != nil || !valid {
		log.Debug("email rejected", logger.Email(in.Email), logger.Err(err))
		return nil, ErrBadEmail
	}

	var phone *domain.PhoneNumber
	if in.PhoneNumber != nil {
		phone = &domain.PhoneNumber{Country: in.PhoneNumber.Country, Number: in.PhoneNumber.Number}
		valid, err := s.deps.Validator.ValidPhone(ctx, phone.FullNumber())
		if err != nil || !valid {
			log.Debug("phone rejected", logger.Err(err))
			return nil, ErrBadPhone
		}
		phone, err = s.deps.Repo.SavePhone(ctx, phone)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
		}
	}

	hash, err := password.Hash(s.deps.HashParams, in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}

	created, err := s.deps.Repo.Save(ctx, &domain.Account{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		PhoneNumber:  phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmailConflict):
			log.Debug("email already registered", logger.Email(in.Email))
			return nil, ErrEmailTaken
		case errors.Is(err, core.ErrConflict):
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}

	if s.deps.Mailer != nil {
		if err := s.deps.Mailer.SendVerificationMail(created.Email, created.UID); err != nil {
			log.Warn("verification mail failed", logger.Err(err))
			return nil, ErrMailSendFailed
		}
	}

	log.Info("account registered", logger.UID(created.UID.String()))
	return created, nil
}

// ValidatePassword reporta si las credenciales son correctas.
// Cuenta inexistente es false, sin efecto colateral.
func (s *Service) ValidatePassword(ctx context.Context, username, plain string) bool {
	a, err := s.deps.Repo.FindByUsername(ctx, username)
	if err != nil {
		return false
	}
	return password.Verify(plain, a.PasswordHash)
}

// Verify2FACode chequea el código contra el secreto TOTP de la cuenta.
func (s *Service) Verify2FACode(a *domain.Account, code string) bool {
	return totp.Verify(a.TOTPSecret, code)
}

// Send2FACode despacha el código vigente por el método dado.
// AUTHENTICATOR es un no-op.
func (s *Service) Send2FACode(ctx context.Context, a *domain.Account, method domain.Method2FA) error {
	if method == domain.MethodAuthenticator {
		return nil
	}
	return s.deps.Dispatcher.Deliver(ctx, a, method)
}

// SetSecretMethod persiste el método de enrolamiento de la cuenta.
func (s *Service) SetSecretMethod(ctx context.Context, a *domain.Account, method domain.Method2FA) error {
	a.SecretMethod = &method
	saved, err := s.deps.Repo.Save(ctx, a)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	*a = *saved
	return nil
}

// QRCodeURI arma la URI otpauth:// de enrolamiento para la cuenta.
func (s *Service) QRCodeURI(a *domain.Account) string {
	label := fmt.Sprintf("%s@%s", a.Username, s.deps.Platform)
	return totp.ProvisioningURI(a.TOTPSecret, label) + "&issuer=" + s.deps.Platform
}

// VerifyMail marca la cuenta como verificada. Idempotente.
func (s *Service) VerifyMail(ctx context.Context, uid uuid.UUID) error {
	a, err := s.deps.Repo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	if a.MailVerified {
		return nil
	}
	a.MailVerified = true
	if _, err := s.deps.Repo.Save(ctx, a); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	logger.From(ctx).Info("mail verified",
		logger.Component("auth"),
		logger.UID(uid.String()),
	)
	return nil
}
