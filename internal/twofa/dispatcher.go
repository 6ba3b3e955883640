// Package twofa despacha códigos de segundo factor por el canal que
// la cuenta tenga configurado. El método AUTHENTICATOR nunca despacha:
// el código vive en la app del usuario.
package twofa

import (
	"context"
	"errors"
	"fmt"

	"github.com/blubbai/backend/internal/domain"
	"github.com/blubbai/backend/internal/email"
	"github.com/blubbai/backend/internal/observability/logger"
	"github.com/blubbai/backend/internal/security/totp"
	"github.com/blubbai/backend/internal/sms"
)

var (
	ErrNoChannel     = errors.New("no delivery channel for method")
	ErrNoPhoneNumber = errors.New("account has no phone number")
)

// Dispatcher calcula el código TOTP vigente de la cuenta y lo manda
// por mail o SMS según el método pedido.
type Dispatcher struct {
	mailer *email.Mailer
	sms    sms.Sender
}

func NewDispatcher(mailer *email.Mailer, smsSender sms.Sender) *Dispatcher {
	return &Dispatcher{mailer: mailer, sms: smsSender}
}

// Deliver manda el código vigente de la cuenta por el método dado.
// Para AUTHENTICATOR es un no-op: no hay nada que despachar.
func (d *Dispatcher) Deliver(ctx context.Context, a *domain.Account, method domain.Method2FA) error {
	if method == domain.MethodAuthenticator {
		return nil
	}

	code, err := totp.Current(a.TOTPSecret)
	if err != nil {
		return fmt.Errorf("compute current code: %w", err)
	}

	log := logger.From(ctx).With(
		logger.Component("twofa"),
		logger.Username(a.Username),
		logger.Method2FA(string(method)),
	)

	switch method {
	case domain.MethodEmail:
		if err := d.mailer.SendTwoFactorCode(a.Email, code); err != nil {
			log.Error("2fa mail dispatch failed", logger.Err(err))
			return err
		}
	case domain.MethodSMS:
		if a.PhoneNumber == nil {
			return ErrNoPhoneNumber
		}
		msg := fmt.Sprintf("Your verification code is %s", code)
		if err := d.sms.Send(ctx, a.PhoneNumber.FullNumber(), msg); err != nil {
			log.Error("2fa sms dispatch failed", logger.Err(err))
			return err
		}
	default:
		return ErrNoChannel
	}

	log.Info("2fa code dispatched")
	return nil
}
