// Package router arma el http.Handler completo del backend: la
// cadena de filtros (request id, logging, métricas, autenticación,
// autorización por path y gate de 2FA) y el ruteo chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authctl "github.com/blubbai/backend/internal/http/controllers/auth"
	toolsctl "github.com/blubbai/backend/internal/http/controllers/tools"
	userctl "github.com/blubbai/backend/internal/http/controllers/user"
	"github.com/blubbai/backend/internal/http/middlewares"
	"github.com/blubbai/backend/internal/token"
)

// Deps agrupa los controllers y el codec que consume la cadena.
type Deps struct {
	Auth  *authctl.Controller
	User  *userctl.Controller
	Tools *toolsctl.Controller
	Codec *token.Codec

	// MetricsHandler expone /metrics si no es nil.
	MetricsHandler http.Handler
}

// New construye el handler raíz. El orden de la cadena importa:
// logging nunca corta, Authenticate liga el principal sin rechazar,
// Authorize aplica el allow-list de paths y TwoFactorGate corta las
// cuentas sin segundo factor completo.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/noa/register", d.Auth.Register)
		r.Post("/noa/login", d.Auth.Login)
		r.Post("/noa/validateToken", d.Auth.ValidateToken)
		r.Post("/noa/renewToken", d.Auth.RenewToken)
		r.Patch("/noa/2fa/verifyMail", d.Auth.VerifyMail)
		r.Get("/no2fa/2fa", d.Auth.GetTwoFactor)
		r.Post("/no2fa/2fa", d.Auth.VerifyTwoFactor)
	})

	r.Route("/api/v1/user", func(r chi.Router) {
		r.Get("/", d.User.Get)
		r.Put("/update", d.User.Update)
		r.Delete("/delete", d.User.Delete)
	})

	r.Route("/tools", func(r chi.Router) {
		r.Get("/health", d.Tools.Health)
		r.Get("/key", d.Tools.Key)
		r.Get("/token", d.Tools.Token)
		r.Get("/bearer", d.Tools.Bearer)
		if d.MetricsHandler != nil {
			r.Handle("/metrics", d.MetricsHandler)
		}
	})

	return middlewares.Chain(r,
		middlewares.WithRequestID(),
		middlewares.WithLogging(),
		middlewares.WithMetrics(),
		middlewares.Authenticate(d.Codec),
		middlewares.Authorize(),
		middlewares.TwoFactorGate(),
	)
}
