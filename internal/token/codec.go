// Package token implementa el modelo de tokens firmados del backend:
// access (10 min), refresh (14 días) y mail_verification (12 h),
// todos HMAC-SHA512 sobre la clave simétrica de proceso (JWT_SECRET).
package token

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/blubbai/backend/internal/domain"
)

// Kind clasifica un token por su claim tokenType.
type Kind string

const (
	KindAccess           Kind = "access"
	KindRefresh          Kind = "refresh"
	KindMailVerification Kind = "mail_verification"
)

// MinKeyLen es el mínimo de bytes exigido para la clave de firma (512 bits).
const MinKeyLen = 64

var (
	ErrShortKey         = errors.New("signing key shorter than 64 bytes")
	ErrMalformed        = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
)

// Claims es el claim set común a los tres tipos de token.
// UID, SecretMethod, TwoFactorCompleted y MailVerified solo viajan
// en los tipos que los requieren (ver Encode).
type Claims struct {
	Subject            string
	IssuedAt           time.Time
	ExpiresAt          time.Time
	Kind               Kind
	UID                string
	SecretMethod       *domain.Method2FA
	TwoFactorCompleted bool
	MailVerified       bool
}

// Codec firma y parsea tokens. Es inmutable y seguro para uso concurrente.
type Codec struct {
	key []byte
	now func() time.Time
}

// NewCodec construye un codec con la clave simétrica dada.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) < MinKeyLen {
		return nil, ErrShortKey
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Codec{key: k, now: time.Now}, nil
}

// Encode firma el claim set. No falla una vez configurada la clave.
func (c *Codec) Encode(cl Claims) (string, error) {
	mc := jwtv5.MapClaims{
		"sub":       cl.Subject,
		"tokenType": string(cl.Kind),
		"iat":       cl.IssuedAt.Unix(),
		"exp":       cl.ExpiresAt.Unix(),
	}
	switch cl.Kind {
	case KindAccess:
		mc["uid"] = cl.UID
		if cl.SecretMethod != nil {
			mc["secretMethod"] = string(*cl.SecretMethod)
		} else {
			mc["secretMethod"] = nil
		}
		mc["2fa_completed"] = cl.TwoFactorCompleted
		mc["mail_verified"] = cl.MailVerified
	case KindMailVerification:
		mc["uid"] = cl.UID
		mc["mail_verified"] = cl.MailVerified
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS512, mc)
	signed, err := tk.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifica la firma y extrae los claims SIN exigir vigencia:
// un token expirado decodifica bien (lo necesita renewToken). La
// vigencia se chequea aparte con IsValid o Claims.Expired.
func (c *Codec) Decode(raw string) (*Claims, error) {
	parser := jwtv5.NewParser(
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS512.Alg()}),
		jwtv5.WithoutClaimsValidation(),
	)
	mc := jwtv5.MapClaims{}
	_, err := parser.ParseWithClaims(raw, mc, func(t *jwtv5.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenSignatureInvalid) || errors.Is(err, jwtv5.ErrSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return claimsFromMap(mc)
}

// IsValid reporta si el token decodifica bien y está vigente.
func (c *Codec) IsValid(raw string) bool {
	cl, err := c.Decode(raw)
	if err != nil {
		return false
	}
	return c.now().Before(cl.ExpiresAt)
}

// Expired reporta si el claim set ya venció en el instante dado.
func (cl *Claims) Expired(at time.Time) bool {
	return !at.Before(cl.ExpiresAt)
}

func claimsFromMap(mc jwtv5.MapClaims) (*Claims, error) {
	sub, _ := mc["sub"].(string)
	tt, _ := mc["tokenType"].(string)
	if sub == "" || tt == "" {
		return nil, fmt.Errorf("%w: missing required claims", ErrMalformed)
	}
	iat, ok := numericClaim(mc["iat"])
	if !ok {
		return nil, fmt.Errorf("%w: missing iat", ErrMalformed)
	}
	exp, ok := numericClaim(mc["exp"])
	if !ok {
		return nil, fmt.Errorf("%w: missing exp", ErrMalformed)
	}

	cl := &Claims{
		Subject:   sub,
		Kind:      Kind(tt),
		IssuedAt:  time.Unix(iat, 0).UTC(),
		ExpiresAt: time.Unix(exp, 0).UTC(),
	}
	if v, ok := mc["uid"].(string); ok {
		cl.UID = v
	}
	if v, ok := mc["secretMethod"].(string); ok && v != "" {
		if m, err := domain.ParseMethod2FA(v); err == nil {
			cl.SecretMethod = &m
		}
	}
	if v, ok := mc["2fa_completed"].(bool); ok {
		cl.TwoFactorCompleted = v
	}
	if v, ok := mc["mail_verified"].(bool); ok {
		cl.MailVerified = v
	}
	return cl, nil
}

func numericClaim(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case jwtv5.NumericDate:
		return n.Unix(), true
	}
	return 0, false
}
