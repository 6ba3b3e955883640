// Package sms despacha el código 2FA por SMS a través de un gateway
// HTTP configurable.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/blubbai/backend/internal/observability/logger"
)

// Sender abstrae el envío de SMS salientes.
type Sender interface {
	Send(ctx context.Context, to, message string) error
}

// HTTPSender postea {"to","message"} al gateway configurado.
type HTTPSender struct {
	http   *http.Client
	url    string
	apiKey string
}

func NewHTTPSender(url, apiKey string) *HTTPSender {
	return &HTTPSender{
		http:   &http.Client{Timeout: 5 * time.Second},
		url:    url,
		apiKey: apiKey,
	}
}

func (s *HTTPSender) Send(ctx context.Context, to, message string) error {
	payload, err := json.Marshal(map[string]string{"to": to, "message": message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway status %d", resp.StatusCode)
	}
	return nil
}

// LogSender escribe el SMS al log en vez de enviarlo. Para desarrollo
// sin gateway configurado.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, message string) error {
	logger.From(ctx).Info("sms (dev sink)",
		logger.Component("sms"),
		logger.String("to", to),
		logger.String("message", message),
	)
	return nil
}
