package domain

import (
	"fmt"
	"strings"
)

// Method2FA es el canal elegido para el segundo factor.
// La ausencia de método (NONE) se representa con un puntero nil en Account.
type Method2FA string

const (
	MethodEmail         Method2FA = "EMAIL"
	MethodSMS           Method2FA = "SMS"
	MethodAuthenticator Method2FA = "AUTHENTICATOR"
)

// ParseMethod2FA convierte el valor recibido por query/body al enum.
func ParseMethod2FA(s string) (Method2FA, error) {
	switch Method2FA(strings.ToUpper(strings.TrimSpace(s))) {
	case MethodEmail:
		return MethodEmail, nil
	case MethodSMS:
		return MethodSMS, nil
	case MethodAuthenticator:
		return MethodAuthenticator, nil
	}
	return "", fmt.Errorf("unknown 2fa method %q", s)
}

// String implementa fmt.Stringer.
func (m Method2FA) String() string { return string(m) }
