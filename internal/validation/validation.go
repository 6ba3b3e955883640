// Package validation consulta la API externa de validación de mails
// y teléfonos. Los veredictos se cachean para no repagar por la misma
// dirección en registros consecutivos.
package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/blubbai/backend/internal/cache"
	"github.com/blubbai/backend/internal/observability/logger"
)

// Validator responde si un mail o un teléfono son reales y entregables.
// Las implementaciones deben ser seguras para uso concurrente.
type Validator interface {
	ValidEmail(ctx context.Context, email string) (bool, error)
	ValidPhone(ctx context.Context, fullNumber string) (bool, error)
}

const (
	emailEndpoint = "https://emailvalidation.abstractapi.com/v1/"
	phoneEndpoint = "https://phonevalidation.abstractapi.com/v1/"

	verdictTTL = 24 * time.Hour
)

// Client implementa Validator contra abstractapi. Si alguna API key
// viene vacía, ese chequeo se considera aprobado (modo desarrollo).
type Client struct {
	http     *http.Client
	cache    cache.Cache
	mailKey  string
	phoneKey string

	// overridables en tests
	mailEndpoint  string
	phoneEndpoint string
}

func NewClient(c cache.Cache, mailKey, phoneKey string) *Client {
	return &Client{
		http:          &http.Client{Timeout: 5 * time.Second},
		cache:         c,
		mailKey:       mailKey,
		phoneKey:      phoneKey,
		mailEndpoint:  emailEndpoint,
		phoneEndpoint: phoneEndpoint,
	}
}

func (c *Client) ValidEmail(ctx context.Context, email string) (bool, error) {
	if c.mailKey == "" {
		return true, nil
	}
	key := "validation:mail:" + email
	if v, ok := c.cached(key); ok {
		return v, nil
	}

	q := url.Values{"api_key": {c.mailKey}, "email": {email}}
	body, err := c.fetch(ctx, c.mailEndpoint+"?"+q.Encode())
	if err != nil {
		return false, err
	}

	var out struct {
		Deliverability string `json:"deliverability"`
		IsValidFormat  struct {
			Value bool `json:"value"`
		} `json:"is_valid_format"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return false, fmt.Errorf("decode email verdict: %w", err)
	}
	valid := out.Deliverability == "DELIVERABLE" && out.IsValidFormat.Value
	c.store(key, valid)
	return valid, nil
}

func (c *Client) ValidPhone(ctx context.Context, fullNumber string) (bool, error) {
	if c.phoneKey == "" {
		return true, nil
	}
	key := "validation:phone:" + fullNumber
	if v, ok := c.cached(key); ok {
		return v, nil
	}

	q := url.Values{"api_key": {c.phoneKey}, "phone": {fullNumber}}
	body, err := c.fetch(ctx, c.phoneEndpoint+"?"+q.Encode())
	if err != nil {
		return false, err
	}

	var out struct {
		Valid bool `json:"valid"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return false, fmt.Errorf("decode phone verdict: %w", err)
	}
	c.store(key, out.Valid)
	return out.Valid, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("validation api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.L().Warn("validation api non-200", logger.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("validation api status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

func (c *Client) cached(key string) (bool, bool) {
	if c.cache == nil {
		return false, false
	}
	b, ok := c.cache.Get(key)
	if !ok || len(b) != 1 {
		return false, false
	}
	return b[0] == 1, true
}

func (c *Client) store(key string, valid bool) {
	if c.cache == nil {
		return
	}
	v := byte(0)
	if valid {
		v = 1
	}
	c.cache.Set(key, []byte{v}, verdictTTL)
}
