package middlewares

import (
	"context"

	"github.com/blubbai/backend/internal/token"
)

type ctxKey string

const (
	// ctxPrincipalKey guarda las claims del access token validado
	ctxPrincipalKey ctxKey = "principal"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
)

// WithPrincipal inyecta las claims del principal en el contexto.
func WithPrincipal(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, claims)
}

// Principal obtiene las claims del principal autenticado.
// Retorna nil si el request no trajo access token válido.
func Principal(ctx context.Context) *token.Claims {
	if v := ctx.Value(ctxPrincipalKey); v != nil {
		if cl, ok := v.(*token.Claims); ok {
			return cl
		}
	}
	return nil
}

// setRequestID inyecta el request ID en el contexto (interno)
func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID obtiene el request ID del contexto.
// Retorna cadena vacía si no hay request ID.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
