package core

import (
	"context"

	"github.com/google/uuid"

	"github.com/blubbai/backend/internal/domain"
)

// Repository es el port de persistencia de cuentas del core de auth.
// Los adapters concretos viven en store/adapters (pg, memory).
//
// Contrato de Save: en el alta genera UID, TOTPSecret y timestamps;
// en updates los campos inmutables (UID, CreatedAt, TOTPSecret) del
// registro existente se conservan, ignorando silenciosamente lo que
// traiga el argumento. UpdatedAt se refresca en cada escritura.
type Repository interface {
	Ping(ctx context.Context) error

	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByUID(ctx context.Context, uid uuid.UUID) (*domain.Account, error)
	Save(ctx context.Context, a *domain.Account) (*domain.Account, error)

	// Delete elimina la cuenta y cascadea a su teléfono y sus refresh tokens.
	Delete(ctx context.Context, a *domain.Account) error

	SavePhone(ctx context.Context, p *domain.PhoneNumber) (*domain.PhoneNumber, error)

	SaveRefresh(ctx context.Context, rt *domain.RefreshToken) (*domain.RefreshToken, error)
	FindRefreshByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
}
