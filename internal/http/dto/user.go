package dto

// UpdateRequest es el draft de cuenta del update de perfil.
// Password vacío significa "no cambiar". SecretMethod distinto de
// AUTHENTICATOR limpia el método enrolado.
type UpdateRequest struct {
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	Password     string       `json:"password,omitempty"`
	SecretMethod *string      `json:"secretMethod,omitempty"`
	PhoneNumber  *PhoneNumber `json:"phoneNumber,omitempty"`
}
