package errors

import (
	"encoding/json"
	"net/http"

	"github.com/blubbai/backend/internal/observability/logger"
)

// errorResponse estructura interna para la serialización JSON.
// Controla exactamente qué campos ve el cliente.
type errorResponse struct {
	Code    int    `json:"error_code"`
	Message string `json:"message"`
}

// WriteError escribe la respuesta HTTP del error dado. Acepta tanto
// *AppError como errores genéricos (que se mapean a 500).
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.L().Error("request failed",
			logger.Int("error_code", appErr.Code),
			logger.Err(appErr.Err),
		)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}
