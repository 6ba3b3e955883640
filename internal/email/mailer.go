package email

import (
	"fmt"

	"github.com/google/uuid"
)

// Mailer arma los mails transaccionales de la plataforma y los
// despacha por el Sender configurado.
type Mailer struct {
	sender   Sender
	platform string // nombre visible de la plataforma (PLATFORM_NAME)
	baseURL  string // URL pública del backend para armar links
}

func NewMailer(sender Sender, platform, baseURL string) *Mailer {
	return &Mailer{sender: sender, platform: platform, baseURL: baseURL}
}

// SendTwoFactorCode manda el código 2FA vigente al mail de la cuenta.
func (m *Mailer) SendTwoFactorCode(to, code string) error {
	subject := fmt.Sprintf("%s: your verification code", m.platform)
	text := fmt.Sprintf("Your %s verification code is %s.\nIt expires in a few minutes.", m.platform, code)
	html := fmt.Sprintf(
		"<p>Your <b>%s</b> verification code is:</p><h2>%s</h2><p>It expires in a few minutes.</p>",
		m.platform, code,
	)
	return m.sender.Send(to, subject, html, text)
}

// SendVerificationMail manda el link de verificación de cuenta.
// El link apunta al endpoint público de verificación con el uid
// de la cuenta como query param.
func (m *Mailer) SendVerificationMail(to string, uid uuid.UUID) error {
	link := fmt.Sprintf("%s/api/v1/auth/noa/2fa/verifyMail?uuid=%s", m.baseURL, uid)
	subject := fmt.Sprintf("Welcome to %s: verify your email", m.platform)
	text := fmt.Sprintf("Welcome to %s!\n\nVerify your email by opening this link:\n%s", m.platform, link)
	html := fmt.Sprintf(
		"<p>Welcome to <b>%s</b>!</p><p><a href=%q>Click here to verify your email</a>.</p>",
		m.platform, link,
	)
	return m.sender.Send(to, subject, html, text)
}
