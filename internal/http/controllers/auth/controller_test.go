package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/blubbai/backend/internal/domain"
	"github.com/blubbai/backend/internal/email"
	authctl "github.com/blubbai/backend/internal/http/controllers/auth"
	toolsctl "github.com/blubbai/backend/internal/http/controllers/tools"
	userctl "github.com/blubbai/backend/internal/http/controllers/user"
	"github.com/blubbai/backend/internal/http/router"
	authsvc "github.com/blubbai/backend/internal/http/services/auth"
	usersvc "github.com/blubbai/backend/internal/http/services/user"
	"github.com/blubbai/backend/internal/security/password"
	"github.com/blubbai/backend/internal/security/totp"
	"github.com/blubbai/backend/internal/store/adapters/memory"
	"github.com/blubbai/backend/internal/token"
	"github.com/blubbai/backend/internal/twofa"
)

// parámetros baratos para no pagar argon2 de producción en cada request
var testHashParams = password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

// ─── Fakes ───

type sentMail struct {
	to, subject, html, text string
}

type captureMailSender struct {
	mails []sentMail
	fail  bool
}

func (c *captureMailSender) Send(to, subject, htmlBody, textBody string) error {
	if c.fail {
		return fmt.Errorf("smtp unreachable")
	}
	c.mails = append(c.mails, sentMail{to: to, subject: subject, html: htmlBody, text: textBody})
	return nil
}

type sentSMS struct {
	to, message string
}

type captureSMSSender struct {
	messages []sentSMS
}

func (c *captureSMSSender) Send(ctx context.Context, to, message string) error {
	c.messages = append(c.messages, sentSMS{to: to, message: message})
	return nil
}

type fakeValidator struct {
	badEmails map[string]bool
	badPhones map[string]bool
}

func (f *fakeValidator) ValidEmail(ctx context.Context, email string) (bool, error) {
	return !f.badEmails[email], nil
}

func (f *fakeValidator) ValidPhone(ctx context.Context, fullNumber string) (bool, error) {
	return !f.badPhones[fullNumber], nil
}

// ─── Harness ───

type harness struct {
	handler http.Handler
	repo    *memory.Store
	mails   *captureMailSender
	sms     *captureSMSSender
	valid   *fakeValidator
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	key := make([]byte, 64)
	for i := range key {
		key[i] = byte(200 - i)
	}
	codec, err := token.NewCodec(key)
	if err != nil {
		t.Fatal(err)
	}

	repo := memory.New()
	tokens := token.NewService(codec, repo)
	mails := &captureMailSender{}
	smsSender := &captureSMSSender{}
	valid := &fakeValidator{badEmails: map[string]bool{}, badPhones: map[string]bool{}}

	mailer := email.NewMailer(mails, "BlubbAI", "http://localhost:8080")
	dispatcher := twofa.NewDispatcher(mailer, smsSender)

	authService := authsvc.NewService(authsvc.Deps{
		Repo:       repo,
		HashParams: testHashParams,
		Validator:  valid,
		Dispatcher: dispatcher,
		Mailer:     mailer,
		Platform:   "BlubbAI",
	})
	userService := usersvc.NewService(usersvc.Deps{
		Repo:       repo,
		HashParams: testHashParams,
		Validator:  valid,
	})

	handler := router.New(router.Deps{
		Auth:  authctl.NewController(authService, tokens, repo),
		User:  userctl.NewController(userService),
		Tools: toolsctl.NewController(tokens, true),
		Codec: codec,
	})

	return &harness{handler: handler, repo: repo, mails: mails, sms: smsSender, valid: valid}
}

func (h *harness) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) register(t *testing.T, username, pass, mail string) {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/api/v1/auth/noa/register", "", map[string]any{
		"username": username,
		"password": pass,
		"email":    mail,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status = %d (%s)", username, rec.Code, rec.Body.String())
	}
}

type tokenPair struct {
	Token struct {
		Token string `json:"token"`
	} `json:"token"`
	RefreshToken struct {
		Token string `json:"token"`
	} `json:"refreshToken"`
}

func (h *harness) login(t *testing.T, username, pass string) tokenPair {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/api/v1/auth/noa/login", "", map[string]string{
		"username": username,
		"password": pass,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status = %d (%s)", username, rec.Code, rec.Body.String())
	}
	var pair tokenPair
	if err := json.Unmarshal(rec.Body.Bytes(), &pair); err != nil {
		t.Fatal(err)
	}
	if pair.Token.Token == "" || pair.RefreshToken.Token == "" {
		t.Fatalf("incomplete pair: %s", rec.Body.String())
	}
	return pair
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var body struct {
		Code int `json:"error_code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("not an error body: %s", rec.Body.String())
	}
	return body.Code
}

var codeRe = regexp.MustCompile(`\b\d{6}\b`)

// ─── Register ───

func TestRegister_CreatesAccountAndSendsVerification(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/auth/noa/register", "", map[string]any{
		"username":    "alice",
		"password":    "hunter2!",
		"email":       "alice@example.com",
		"phoneNumber": map[string]string{"country": "DE", "number": "15112345678"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Token == "" {
		t.Fatalf("register must return an access token: %s", rec.Body.String())
	}

	a, err := h.repo.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("account not persisted: %v", err)
	}
	if a.PhoneNumber == nil || a.PhoneNumber.Country != "DE" {
		t.Fatalf("phone not persisted: %+v", a.PhoneNumber)
	}
	if a.MailVerified {
		t.Fatal("account must start unverified")
	}

	if len(h.mails.mails) != 1 {
		t.Fatalf("want 1 verification mail, got %d", len(h.mails.mails))
	}
	m := h.mails.mails[0]
	if m.to != "alice@example.com" {
		t.Fatalf("mail to %q", m.to)
	}
	wantLink := "/api/v1/auth/noa/2fa/verifyMail?uuid=" + a.UID.String()
	if !strings.Contains(m.text, wantLink) {
		t.Fatalf("verification link missing: %s", m.text)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "hunter2!", "alice@example.com")

	rec := h.do(t, http.MethodPost, "/api/v1/auth/noa/register", "", map[string]string{
		"username": "alice",
		"password": "other",
		"email":    "other@example.com",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	if errCode(t, rec) != 1003 {
		t.Fatalf("error_code = %d, want 1003", errCode(t, rec))
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "hunter2!", "shared@example.com")

	rec := h.do(t, http.MethodPost, "/api/v1/auth/noa/register", "", map[string]string{
		"username": "bob",
		"password": "other",
		"email":    "shared@example.com",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if errCode(t, rec) != 1002 {
		t.Fatalf("error_code = %d, want 1002", errCode(t, rec))
	}
	if _, err := h.repo.FindByUsername(context.Background(), "bob"); err == nil {
		t.Fatal("second account with duplicate email was persisted")
	}
}

func TestRegister_RejectedEmail(t *testing.T) {
	h := newHarness(t)
	h.valid.badEmails["fake@spam.test"] = true

	rec := h.do(t, http.MethodPost, "/api/v1/auth/noa/register", "", map[string]string{
		"username": "bob",
		"password": "hunter2!",
		"email":    "fake@spam.test",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if errCode(t, rec) != 1002 {
		t.Fatalf("error_code = %d, want 1002", errCode(t, rec))
	}
}

func TestRegister_RejectedPhone(t *testing.T) {
	h := newHarness(t)
	h.valid.badPhones["+4912345"] = true

	rec := h.do(t, http.MethodPost, "/api/v1/auth/noa/register", "", map[string]any{
		"username":    "bob",
		"password":    "hunter2!",
		"email":       "bob@example.com",
		"phoneNumber": map[string]string{"country": "DE", "number": "12345"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if errCode(t, rec) != 1004 {
		t.Fatalf("error_code = %d, want 1004", errCode(t, rec))
	}
}

func TestRegister_EmptyUsername(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/api/v1/auth/noa/register", "", map[string]string{
		"username": "",
		"password": "hunter2!",
		"email":    "a@e.com",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if errCode(t, rec) != 1005 {
		t.Fatalf("error_code = %d, want 1005", errCode(t, rec))
	}
}

func TestRegister_MailDeliveryFailure(t *testing.T) {
	h := newHarness(t)
	h.mails.fail = true

	rec := h.do(t, http.MethodPost, "/api/v1/auth/noa/register", "", map[string]string{
		"username": "alice",
		"password": "hunter2!",
		"email":    "alice@example.com",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if errCode(t, rec) != 1002 {
		t.Fatalf("error_code = %d, want 1002", errCode(t, rec))
	}
}

// ─── Login ───

func TestLogin_ReturnsPair(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "hunter2!", "alice@example.com")

	pair := h.login(t, "alice", "hunter2!")

	// el access de login todavía no completó 2FA
	rec := h.do(t, http.MethodGet, "/api/v1/user", pair.Token.Token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("pending-2fa token on protected path: status = %d, want 403", rec.Code)
	}
	if errCode(t, rec) != 4005 {
		t.Fatalf("error_code = %d, want 4005", errCode(t, rec))
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/api/v1/auth/noa/login", "", map[string]string{
		"username": "ghost",
		"password": "whatever",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if errCode(t, rec) != 1005 {
		t.Fatalf("error_code = %d, want 1005", errCode(t, rec))
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "hunter2!", "alice@example.com")

	rec := h.do(t, http.MethodPost, "/api/v1/auth/noa/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if errCode(t, rec) != 4002 {
		t.Fatalf("error_code = %d, want 4002", errCode(t, rec))
	}
}

// ─── validateToken / renewToken ───

func TestValidateToken(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "hunter2!", "alice@example.com")
	pair := h.login(t, "alice", "hunter2!")

	rec := h.do(t, http.MethodPost, "/api/v1/auth/noa/validateToken", "", map[string]string{"token": pair.Token.Token})
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "true" {
		t.Fatalf("valid token: %d %q", rec.Code, rec.Body.String())
	}

	rec = h.do(t, http.MethodPost, "/api/v1/auth/noa/validateToken", "", map[string]string{"token": "garbage"})
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "false" {
		t.Fatalf("garbage token: %d %q", rec.Code, rec.Body.String())
	}
}

func TestRenewToken(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "hunter2!", "alice@example.com")
	pair := h.login(t, "alice", "hunter2!")

	rec := h.do(t, http.MethodPost, "/api/v1/auth/noa/renewToken", pair.Token.Token,
		map[string]string{"token": pair.RefreshToken.Token})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Token == "" {
		t.Fatalf("renew must return an access token: %s", rec.Body.String())
	}

	// el token renovado ya pasa el gate de 2FA
	if rec := h.do(t, http.MethodGet, "/api/v1/user", body.Token, nil); rec.Code == http.StatusForbidden {
		t.Fatal("renewed token must carry 2fa_completed")
	}
}

func TestRenewToken_Rejections(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "hunter2!", "alice@example.com")
	pair := h.login(t, "alice", "hunter2!")

	// sin header Authorization
	rec := h.do(t, http.MethodPost, "/api/v1/auth/noa/renewToken", "",
		map[string]string{"token": pair.RefreshToken.Token})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing bearer: status = %d", rec.Code)
	}

	// access en el lugar del refresh
	rec = h.do(t, http.MethodPost, "/api/v1/auth/noa/renewToken", pair.Token.Token,
		map[string]string{"token": pair.Token.Token})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("access-as-refresh: status = %d", rec.Code)
	}
	if errCode(t, rec) != 4004 {
		t.Fatalf("error_code = %d, want 4004", errCode(t, rec))
	}
}

// ─── verifyMail ───

func TestVerifyMail(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "hunter2!", "alice@example.com")
	a, err := h.repo.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}

	path := "/api/v1/auth/noa/2fa/verifyMail?uuid=" + a.UID.String()
	rec := h.do(t, http.MethodPatch, path, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}

	a, _ = h.repo.FindByUsername(context.Background(), "alice")
	if !a.MailVerified {
		t.Fatal("account not marked verified")
	}

	// idempotente
	if rec := h.do(t, http.MethodPatch, path, "", nil); rec.Code != http.StatusOK {
		t.Fatalf("second verify: status = %d", rec.Code)
	}
}

func TestVerifyMail_BadInput(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPatch, "/api/v1/auth/noa/2fa/verifyMail", "", nil)
	if rec.Code != http.StatusBadRequest || errCode(t, rec) != 1005 {
		t.Fatalf("empty uuid: %d code %d", rec.Code, errCode(t, rec))
	}

	rec = h.do(t, http.MethodPatch, "/api/v1/auth/noa/2fa/verifyMail?uuid=not-a-uuid", "", nil)
	if rec.Code != http.StatusNotFound || errCode(t, rec) != 1001 {
		t.Fatalf("malformed uuid: %d code %d", rec.Code, errCode(t, rec))
	}

	rec = h.do(t, http.MethodPatch, "/api/v1/auth/noa/2fa/verifyMail?uuid=d3b07384-d9a0-4f5c-9c3e-1a2b3c4d5e6f", "", nil)
	if rec.Code != http.StatusNotFound || errCode(t, rec) != 1001 {
		t.Fatalf("unknown uuid: %d code %d", rec.Code, errCode(t, rec))
	}
}

// ─── 2FA ───

func TestTwoFactor_AuthenticatorEnrollment(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "hunter2!", "alice@example.com")
	pair := h.login(t, "alice", "hunter2!")

	rec := h.do(t, http.MethodGet, "/api/v1/auth/no2fa/2fa?method=AUTHENTICATOR", pair.Token.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type = %q", ct)
	}

	a, _ := h.repo.FindByUsername(context.Background(), "alice")
	uri := rec.Body.String()
	if !strings.HasPrefix(uri, "otpauth://totp/alice@BlubbAI?secret=") {
		t.Fatalf("unexpected provisioning uri: %s", uri)
	}
	if !strings.Contains(uri, "secret="+a.TOTPSecret) {
		t.Fatal("uri does not carry the account secret")
	}
	if !strings.Contains(uri, "issuer=BlubbAI") {
		t.Fatalf("issuer missing: %s", uri)
	}
	if a.SecretMethod == nil || *a.SecretMethod != domain.MethodAuthenticator {
		t.Fatalf("method not persisted: %v", a.SecretMethod)
	}

	// un segundo GET ya no re-enrola: despacha (no-op) y devuelve 200 vacío
	rec = h.do(t, http.MethodGet, "/api/v1/auth/no2fa/2fa", pair.Token.Token, nil)
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("re-request: %d %q", rec.Code, rec.Body.String())
	}
}

func TestTwoFactor_EmailFlow(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "hunter2!", "alice@example.com")
	pair := h.login(t, "alice", "hunter2!")
	h.mails.mails = nil // descartar el mail de verificación

	rec := h.do(t, http.MethodGet, "/api/v1/auth/no2fa/2fa?method=EMAIL", pair.Token.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dispatch: status = %d (%s)", rec.Code, rec.Body.String())
	}
	if len(h.mails.mails) != 1 {
		t.Fatalf("want 1 code mail, got %d", len(h.mails.mails))
	}
	code := codeRe.FindString(h.mails.mails[0].text)
	if code == "" {
		t.Fatalf("no code in mail body: %s", h.mails.mails[0].text)
	}

	a, _ := h.repo.FindByUsername(context.Background(), "alice")
	if want, _ := totp.Current(a.TOTPSecret); code != want {
		t.Fatalf("mailed code %s != current code %s", code, want)
	}

	rec = h.do(t, http.MethodPost, "/api/v1/auth/no2fa/2fa?code="+code, pair.Token.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: status = %d (%s)", rec.Code, rec.Body.String())
	}
	var completed tokenPair
	if err := json.Unmarshal(rec.Body.Bytes(), &completed); err != nil || completed.Token.Token == "" {
		t.Fatalf("verify must return a pair: %s", rec.Body.String())
	}

	// con el par completo la cuenta pasa el gate
	rec = h.do(t, http.MethodGet, "/api/v1/user", completed.Token.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile after 2fa: status = %d (%s)", rec.Code, rec.Body.String())
	}
	var profile map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatal(err)
	}
	if profile["username"] != "alice" {
		t.Fatalf("profile = %v", profile)
	}
	if _, leaked := profile["passwordHash"]; leaked {
		t.Fatal("password hash serialized to client")
	}
}

func TestTwoFactor_SMSDispatch(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/api/v1/auth/noa/register", "", map[string]any{
		"username":    "alice",
		"password":    "hunter2!",
		"email":       "alice@example.com",
		"phoneNumber": map[string]string{"country": "DE", "number": "15112345678"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatal(rec.Body.String())
	}
	pair := h.login(t, "alice", "hunter2!")

	rec = h.do(t, http.MethodGet, "/api/v1/auth/no2fa/2fa?method=SMS", pair.Token.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if len(h.sms.messages) != 1 {
		t.Fatalf("want 1 sms, got %d", len(h.sms.messages))
	}
	msg := h.sms.messages[0]
	if msg.to != "+4915112345678" {
		t.Fatalf("sms to %q", msg.to)
	}
	if codeRe.FindString(msg.message) == "" {
		t.Fatalf("no code in sms: %s", msg.message)
	}
}

func TestTwoFactor_SMSWithoutPhone(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "hunter2!", "alice@example.com") // sin teléfono
	pair := h.login(t, "alice", "hunter2!")

	rec := h.do(t, http.MethodGet, "/api/v1/auth/no2fa/2fa?method=SMS", pair.Token.Token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if errCode(t, rec) != 1004 {
		t.Fatalf("error_code = %d, want 1004", errCode(t, rec))
	}
	if len(h.sms.messages) != 0 {
		t.Fatalf("sms dispatched without phone: %+v", h.sms.messages)
	}
}

func TestTwoFactor_BadCode(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "hunter2!", "alice@example.com")
	pair := h.login(t, "alice", "hunter2!")

	// enrolar EMAIL primero
	if rec := h.do(t, http.MethodGet, "/api/v1/auth/no2fa/2fa?method=EMAIL", pair.Token.Token, nil); rec.Code != http.StatusOK {
		t.Fatal(rec.Body.String())
	}

	rec := h.do(t, http.MethodPost, "/api/v1/auth/no2fa/2fa?code=000000", pair.Token.Token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if errCode(t, rec) != 4003 {
		t.Fatalf("error_code = %d, want 4003", errCode(t, rec))
	}
}

func TestTwoFactor_MissingCode(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "hunter2!", "alice@example.com")
	pair := h.login(t, "alice", "hunter2!")

	rec := h.do(t, http.MethodPost, "/api/v1/auth/no2fa/2fa", pair.Token.Token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestTwoFactor_VerifyWithoutMethod(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "hunter2!", "alice@example.com")
	pair := h.login(t, "alice", "hunter2!")

	rec := h.do(t, http.MethodPost, "/api/v1/auth/no2fa/2fa?code=123456", pair.Token.Token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if errCode(t, rec) != 4001 {
		t.Fatalf("error_code = %d, want 4001", errCode(t, rec))
	}
}

func TestTwoFactor_NoQueryNoStoredMethod(t *testing.T) {
	h := newHarness(t)
	h.register(t, "alice", "hunter2!", "alice@example.com")
	pair := h.login(t, "alice", "hunter2!")

	rec := h.do(t, http.MethodGet, "/api/v1/auth/no2fa/2fa", pair.Token.Token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if errCode(t, rec) != 4001 {
		t.Fatalf("error_code = %d, want 4001", errCode(t, rec))
	}
}

func TestTwoFactor_RequiresPrincipal(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/api/v1/auth/no2fa/2fa?method=EMAIL", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
