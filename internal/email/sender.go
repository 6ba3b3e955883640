// Package email envía los mails transaccionales del backend: el
// código 2FA y el mail de verificación de cuenta.
package email

// Sender abstrae el transporte de mail saliente.
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// SMTPConfig contiene la configuración del servidor SMTP.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	TLSMode   string // "auto" | "starttls" | "ssl" | "none"
}
