// Package totp implementa TOTP (RFC 6238): códigos de 6 dígitos,
// período de 30s, HMAC-SHA1 sobre un secreto base32 de 160 bits.
package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
)

const (
	digits = 6
	period = 30 // segundos
	window = 1  // pasos de tolerancia hacia cada lado
)

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateSecret retorna 20 bytes aleatorios y su base32 sin padding (RFC 3548).
func GenerateSecret() (raw []byte, secret string, err error) {
	raw = make([]byte, 20)
	if _, err = rand.Read(raw); err != nil {
		return nil, "", err
	}
	return raw, b32.EncodeToString(raw), nil
}

// Current retorna el código vigente para el secreto dado.
func Current(secret string) (string, error) {
	raw, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	return hotp(raw, time.Now().Unix()/period), nil
}

// Verify chequea un código contra el secreto con ventana +/- 1 paso.
// La comparación es en tiempo constante.
func Verify(secret, code string) bool {
	code = strings.TrimSpace(code)
	if len(code) != digits {
		return false
	}
	raw, err := decodeSecret(secret)
	if err != nil {
		return false
	}
	counter := time.Now().Unix() / period
	ok := false
	for c := counter - window; c <= counter+window; c++ {
		// Sin short-circuit: se evalúan todos los pasos de la ventana.
		if subtle.ConstantTimeCompare([]byte(hotp(raw, c)), []byte(code)) == 1 {
			ok = true
		}
	}
	return ok
}

// ProvisioningURI construye la URI otpauth:// para registrar el secreto
// en una app authenticator: otpauth://totp/{label}?secret={secret}
func ProvisioningURI(secret, label string) string {
	return fmt.Sprintf("otpauth://totp/%s?secret=%s", url.PathEscape(label), secret)
}

func decodeSecret(secret string) ([]byte, error) {
	return b32.DecodeString(strings.ToUpper(strings.TrimSpace(secret)))
}

// hotp calcula HOTP(K, C) con HMAC-SHA1 (RFC 4226).
func hotp(secretRaw []byte, counter int64) string {
	var msg [8]byte
	for i := 7; i >= 0; i-- {
		msg[i] = byte(counter & 0xff)
		counter >>= 8
	}
	m := hmac.New(sha1.New, secretRaw)
	_, _ = m.Write(msg[:])
	sum := m.Sum(nil)
	offset := int(sum[len(sum)-1] & 0x0f)
	bin := (int(sum[offset])&0x7f)<<24 | int(sum[offset+1])<<16 | int(sum[offset+2])<<8 | int(sum[offset+3])
	return fmt.Sprintf("%0*d", digits, bin%int(math.Pow10(digits)))
}
