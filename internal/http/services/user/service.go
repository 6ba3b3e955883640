// Package user implementa las operaciones de perfil de la cuenta
// autenticada: consulta, actualización y baja.
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/blubbai/backend/internal/domain"
	"github.com/blubbai/backend/internal/http/dto"
	"github.com/blubbai/backend/internal/observability/logger"
	"github.com/blubbai/backend/internal/security/password"
	"github.com/blubbai/backend/internal/store/core"
	"github.com/blubbai/backend/internal/validation"
)

var (
	ErrUserNotFound    = fmt.Errorf("user not found")
	ErrInvalidPassword = fmt.Errorf("invalid password")
	ErrBadEmail        = fmt.Errorf("email rejected")
	ErrBadPhone        = fmt.Errorf("phone rejected")
	ErrStoreFailed     = fmt.Errorf("store operation failed")
)

// Deps contiene las dependencias del user service.
type Deps struct {
	Repo       core.Repository
	HashParams password.Params
	Validator  validation.Validator
}

type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	return &Service{deps: deps}
}

// Get resuelve la cuenta del principal por username.
func (s *Service) Get(ctx context.Context, username string) (*domain.Account, error) {
	a, err := s.deps.Repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	return a, nil
}

// Update modifica el perfil de la cuenta autenticada tras verificar
// el password vigente. Email y teléfono pasan por la validación
// externa. El username no es actualizable. Un secretMethod distinto
// de AUTHENTICATOR en el draft limpia el método enrolado.
func (s *Service) Update(ctx context.Context, username, oldPassword string, in dto.UpdateRequest) (*domain.Account, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("user"),
		logger.Op("Update"),
		logger.Username(username),
	)

	loggedIn, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	if !password.Verify(oldPassword, loggedIn.PasswordHash) {
		log.Debug("old password check failed")
		return nil, ErrInvalidPassword
	}

	valid, err := s.deps.Validator.ValidEmail(ctx, in.Email)
	if err != nil || !valid {
		return nil, ErrBadEmail
	}

	var phone *domain.PhoneNumber
	if in.PhoneNumber != nil {
		phone = &domain.PhoneNumber{Country: in.PhoneNumber.Country, Number: in.PhoneNumber.Number}
		if loggedIn.PhoneNumber != nil {
			phone.ID = loggedIn.PhoneNumber.ID
		}
		valid, err := s.deps.Validator.ValidPhone(ctx, phone.FullNumber())
		if err != nil || !valid {
			return nil, ErrBadPhone
		}
		phone, err = s.deps.Repo.SavePhone(ctx, phone)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
		}
	}

	loggedIn.Email = in.Email
	loggedIn.PhoneNumber = phone

	if in.Password != "" {
		hash, err := password.Hash(s.deps.HashParams, in.Password)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
		}
		loggedIn.PasswordHash = hash
	}

	// Solo AUTHENTICATOR sobrevive en el draft; cualquier otro valor
	// vuelve el enrolamiento a NONE.
	if in.SecretMethod != nil && *in.SecretMethod == string(domain.MethodAuthenticator) {
		m := domain.MethodAuthenticator
		loggedIn.SecretMethod = &m
	} else {
		loggedIn.SecretMethod = nil
	}

	saved, err := s.deps.Repo.Save(ctx, loggedIn)
	if err != nil {
		if errors.Is(err, core.ErrEmailConflict) {
			log.Debug("email already registered")
			return nil, ErrBadEmail
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}

	log.Info("account updated")
	return saved, nil
}

// Delete da de baja la cuenta autenticada. El store cascadea teléfono
// y refresh tokens.
func (s *Service) Delete(ctx context.Context, username string) error {
	a, err := s.Get(ctx, username)
	if err != nil {
		return err
	}
	if err := s.deps.Repo.Delete(ctx, a); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	logger.From(ctx).Info("account deleted",
		logger.Component("user"),
		logger.Username(username),
	)
	return nil
}
