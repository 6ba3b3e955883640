package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken es el registro persistido de un refresh token emitido.
// La cuenta dueña se referencia por UID (sin grafo de objetos embebido).
// Invariante: ExpiresAt - IssuedAt = 14 días.
type RefreshToken struct {
	ID         uuid.UUID `json:"-"`
	AccountUID uuid.UUID `json:"-"`
	Token      string    `json:"token"`
	IssuedAt   time.Time `json:"-"`
	ExpiresAt  time.Time `json:"-"`
	Revoked    bool      `json:"-"`
}
