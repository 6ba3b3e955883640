// Package dto define los cuerpos de request y response del API.
package dto

import "github.com/blubbai/backend/internal/domain"

// PhoneNumber es el teléfono tal como viaja en los drafts de cuenta.
type PhoneNumber struct {
	Country string `json:"country"`
	Number  string `json:"number"`
}

// RegisterRequest es el draft de cuenta del registro.
type RegisterRequest struct {
	Username    string       `json:"username"`
	Password    string       `json:"password"`
	Email       string       `json:"email"`
	PhoneNumber *PhoneNumber `json:"phoneNumber,omitempty"`
}

// LoginRequest son las credenciales del login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccessToken envuelve un token firmado.
type AccessToken struct {
	Token string `json:"token"`
}

// TokenPair es la respuesta de login y de verificación 2FA.
type TokenPair struct {
	Token        AccessToken          `json:"token"`
	RefreshToken *domain.RefreshToken `json:"refreshToken"`
}

// ValidateResult es la respuesta de validateToken.
type ValidateResult bool
