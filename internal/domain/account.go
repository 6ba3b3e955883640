package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account es la cuenta de usuario del backend de chat.
//
// Invariantes: UID y TOTPSecret nunca mutan después de la creación;
// Username y Email son únicos en el store; UpdatedAt >= CreatedAt.
// PasswordHash y TOTPSecret jamás se serializan hacia el cliente.
type Account struct {
	UID          uuid.UUID    `json:"uId"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	TOTPSecret   string       `json:"-"`
	SecretMethod *Method2FA   `json:"secretMethod"`
	MailVerified bool         `json:"-"`
	CreatedAt    time.Time    `json:"-"`
	UpdatedAt    time.Time    `json:"-"`
	PhoneNumber  *PhoneNumber `json:"phoneNumber,omitempty"`
	Role         *Role        `json:"role,omitempty"`
}

// Role es una referencia de autorización; el core de auth no la consume.
type Role struct {
	RID         int    `json:"rId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
