package middlewares

import (
	"net/http"
	"strings"

	httperrors "github.com/blubbai/backend/internal/http/errors"
)

// TwoFactorGate corre DESPUÉS de Authenticate y corta los requests
// de cuentas que todavía no completaron su segundo factor.
//
// Paths que contienen "/no2fa" o "/noa" pasan sin chequeo. Para el
// resto, si viene un Bearer token válido se leen secretMethod y
// 2fa_completed de sus claims:
//
//	secretMethod == null && !2fa_completed  → 403 TWO_FACTOR_REQUIRED
//	secretMethod == null                    → 400 METHOD_NOT_SET
//	resto                                   → pasa
//
// Un Bearer presente pero inválido responde 401 y corta ahí mismo.
func TwoFactorGate() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := r.URL.Path
			if strings.Contains(p, "/no2fa") || strings.Contains(p, "/noa") {
				next.ServeHTTP(w, r)
				return
			}

			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims := Principal(r.Context())
			if claims == nil {
				// Bearer presente pero Authenticate no ligó principal:
				// token inválido, vencido o de tipo incorrecto.
				httperrors.WriteError(w, httperrors.ErrTokenExpired)
				return
			}

			if claims.SecretMethod == nil && !claims.TwoFactorCompleted {
				httperrors.WriteError(w, httperrors.ErrTwoFactorRequired)
				return
			}
			if claims.SecretMethod == nil {
				httperrors.WriteError(w, httperrors.ErrMethodNotSet.WithStatus(http.StatusBadRequest))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
