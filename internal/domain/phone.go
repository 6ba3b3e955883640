package domain

import (
	"github.com/google/uuid"

	"github.com/blubbai/backend/internal/phone"
)

// PhoneNumber es el teléfono asociado 1:1 a una cuenta.
// Country es ISO-3166 alpha-2; Number es el número nacional significativo.
type PhoneNumber struct {
	ID      uuid.UUID `json:"-"`
	Country string    `json:"country"`
	Number  string    `json:"number"`
}

// FullNumber deriva el número en formato E.164: "+{calling code}{number}".
func (p *PhoneNumber) FullNumber() string {
	return "+" + phone.CallingCode(p.Country) + p.Number
}
