package tools_test

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	toolsctl "github.com/blubbai/backend/internal/http/controllers/tools"
	"github.com/blubbai/backend/internal/store/adapters/memory"
	"github.com/blubbai/backend/internal/token"
)

func newController(t *testing.T, devTools bool) (*toolsctl.Controller, *token.Codec) {
	t.Helper()
	key := make([]byte, 64)
	for i := range key {
		key[i] = byte(i + 7)
	}
	codec, err := token.NewCodec(key)
	if err != nil {
		t.Fatal(err)
	}
	tokens := token.NewService(codec, memory.New())
	return toolsctl.NewController(tokens, devTools), codec
}

func TestHealth(t *testing.T) {
	c, _ := newController(t, false)
	rec := httptest.NewRecorder()
	c.Health(rec, httptest.NewRequest(http.MethodGet, "/tools/health", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("%d %q", rec.Code, rec.Body.String())
	}
}

func TestKey_DevOnly(t *testing.T) {
	c, _ := newController(t, true)
	rec := httptest.NewRecorder()
	c.Key(rec, httptest.NewRequest(http.MethodGet, "/tools/key", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	raw, err := base64.StdEncoding.DecodeString(rec.Body.String())
	if err != nil {
		t.Fatalf("key is not base64: %v", err)
	}
	if len(raw) != 64 {
		t.Fatalf("key len = %d, want 64", len(raw))
	}

	c, _ = newController(t, false)
	rec = httptest.NewRecorder()
	c.Key(rec, httptest.NewRequest(http.MethodGet, "/tools/key", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("prod mode: status = %d, want 404", rec.Code)
	}
}

func TestToken_DefaultSubject(t *testing.T) {
	c, codec := newController(t, true)
	rec := httptest.NewRecorder()
	c.Token(rec, httptest.NewRequest(http.MethodGet, "/tools/token", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	cl, err := codec.Decode(body.Token)
	if err != nil {
		t.Fatal(err)
	}
	if cl.Subject != "lupier" {
		t.Fatalf("default subject = %q", cl.Subject)
	}
	if cl.Kind != token.KindAccess {
		t.Fatalf("kind = %q", cl.Kind)
	}

	rec = httptest.NewRecorder()
	c.Token(rec, httptest.NewRequest(http.MethodGet, "/tools/token?username=carol", nil))
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if cl, _ := codec.Decode(body.Token); cl == nil || cl.Subject != "carol" {
		t.Fatalf("custom subject not honored")
	}
}

func TestToken_DisabledOutsideDev(t *testing.T) {
	c, _ := newController(t, false)
	rec := httptest.NewRecorder()
	c.Token(rec, httptest.NewRequest(http.MethodGet, "/tools/token", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestBearer(t *testing.T) {
	c, _ := newController(t, false)

	req := httptest.NewRequest(http.MethodGet, "/tools/bearer", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	rec := httptest.NewRecorder()
	c.Bearer(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "abc.def.ghi" {
		t.Fatalf("%d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c.Bearer(rec, httptest.NewRequest(http.MethodGet, "/tools/bearer", nil))
	if rec.Code != http.StatusBadRequest || rec.Body.String() != "Invalid Authorization header" {
		t.Fatalf("%d %q", rec.Code, rec.Body.String())
	}
}
