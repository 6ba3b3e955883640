// Package errors define el catálogo de errores de negocio del backend
// y su serialización hacia el cliente.
package errors

import (
	"fmt"
	"net/http"
)

// AppError es la estructura estándar para errores de la aplicación.
// Code es el código numérico de negocio del contrato (1xxx cuentas,
// 4xxx auth); HTTPStatus decide el status de la respuesta.
type AppError struct {
	Code       int    `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa original, solo para logs
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithCause agrega el error original (causa).
// Devuelve una COPIA del error para no mutar las variables globales base.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// WithStatus devuelve una COPIA del error con otro status HTTP.
// El mismo código de negocio puede viajar con distinto status según
// el contexto (p.ej. 4001 es 400 en el gate y 401 en el verify).
func (e *AppError) WithStatus(status int) *AppError {
	newErr := *e
	newErr.HTTPStatus = status
	return &newErr
}

// FromError intenta convertir un error genérico en un AppError.
// Si no lo es, devuelve el error interno genérico conservando la causa.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// ---------------------------------------------------------------------------------
// Serie 1xxx: validación de cuentas
// ---------------------------------------------------------------------------------

var (
	ErrUserNotFound = &AppError{
		Code:       1001,
		Message:    "user not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrBadEmail = &AppError{
		Code:       1002,
		Message:    "email address rejected by validation",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrUsernameConflict = &AppError{
		Code:       1003,
		Message:    "username already taken",
		HTTPStatus: http.StatusConflict,
	}

	ErrBadPhone = &AppError{
		Code:       1004,
		Message:    "phone number rejected by validation",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrBadUsername = &AppError{
		Code:       1005,
		Message:    "username is not acceptable",
		HTTPStatus: http.StatusBadRequest,
	}
)

// ---------------------------------------------------------------------------------
// Serie 4xxx: autenticación y segundo factor
// ---------------------------------------------------------------------------------

var (
	ErrMethodNotSet = &AppError{
		Code:       4001,
		Message:    "no second factor method configured",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidPassword = &AppError{
		Code:       4002,
		Message:    "invalid credentials",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalid2FA = &AppError{
		Code:       4003,
		Message:    "invalid second factor code",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenExpired = &AppError{
		Code:       4004,
		Message:    "token expired or invalid",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTwoFactorRequired = &AppError{
		Code:       4005,
		Message:    "second factor verification required",
		HTTPStatus: http.StatusForbidden,
	}
)

// ---------------------------------------------------------------------------------
// Errores genéricos sin código de negocio propio
// ---------------------------------------------------------------------------------

var (
	ErrBadRequest = &AppError{
		Code:       400,
		Message:    "the request contains invalid syntax or missing parameters",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrUnauthorized = &AppError{
		Code:       401,
		Message:    "authentication required",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrNotFound = &AppError{
		Code:       404,
		Message:    "resource not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrInternal = &AppError{
		Code:       500,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}
)
