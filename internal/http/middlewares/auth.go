package middlewares

import (
	"net/http"
	"strings"

	httperrors "github.com/blubbai/backend/internal/http/errors"
	"github.com/blubbai/backend/internal/observability/logger"
	"github.com/blubbai/backend/internal/token"
)

// bearerToken extrae el token crudo del header Authorization.
// Retorna cadena vacía si no hay esquema Bearer.
func bearerToken(r *http.Request) string {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
		return ""
	}
	return strings.TrimSpace(ah[len("Bearer "):])
}

// Authenticate intenta ligar el principal del request: si viene un
// Bearer token válido, vigente y de tipo access, deja sus claims en
// el contexto. Cualquier falla (ausente, malformado, tipo incorrecto,
// vencido) deja el contexto sin principal pero NUNCA corta el request;
// rechazar es trabajo del gate de autorización.
func Authenticate(codec *token.Codec) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !codec.IsValid(raw) {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := codec.Decode(raw)
			if err != nil || claims.Kind != token.KindAccess {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithPrincipal(r.Context(), claims)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.Username(claims.Subject)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize aplica las reglas de acceso por path:
//
//	OPTIONS *            siempre pasa (preflight CORS)
//	/tools/**            sin autenticación
//	**/noa/**            sin autenticación
//	resto                requiere principal (access token válido)
func Authorize() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if openPath(r) {
				next.ServeHTTP(w, r)
				return
			}
			if Principal(r.Context()) == nil {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func openPath(r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return true
	}
	p := r.URL.Path
	return strings.HasPrefix(p, "/tools/") || p == "/tools" || strings.Contains(p, "/noa/")
}
