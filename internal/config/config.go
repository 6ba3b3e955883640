// Package config carga la configuración del proceso: config.yaml con
// defaults razonables, pisado por variables de entorno. El secreto de
// firma solo viaja por entorno (JWT_SECRET) y se valida al cargar.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MinJWTSecretLen es el mínimo de bytes del secreto de firma (512 bits).
const MinJWTSecretLen = 64

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
		// Nombre visible de la plataforma; label del QR y remitente.
		PlatformName string `yaml:"platform_name"`
		// Habilita /tools/key y /tools/token. Forzado a false en prod.
		DevTools bool `yaml:"dev_tools"`
		// URL pública del backend para armar links de verificación.
		PublicURL string `yaml:"public_url"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		Driver string `yaml:"driver"` // memory | postgres
		DSN    string `yaml:"dsn"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr string `yaml:"addr"`
			DB   int    `yaml:"db"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		// Secret no tiene tag yaml a propósito: solo entorno.
		Secret string `yaml:"-"`
	} `yaml:"jwt"`

	Mail struct {
		From    string `yaml:"from"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
		User    string `yaml:"user"`
		Pass    string `yaml:"-"`
		TLSMode string `yaml:"tls_mode"`
	} `yaml:"mail"`

	SMS struct {
		GatewayURL string `yaml:"gateway_url"`
		APIKey     string `yaml:"-"`
	} `yaml:"sms"`

	Validation struct {
		MailAPIKey  string `yaml:"-"`
		PhoneAPIKey string `yaml:"-"`
	} `yaml:"validation"`
}

// Load lee el yaml (si existe), aplica defaults y pisa con entorno.
// Falla si JWT_SECRET falta o es más corto que 64 bytes.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.PlatformName == "" {
		c.App.PlatformName = "BlubbAI"
	}
	if c.App.PublicURL == "" {
		c.App.PublicURL = "http://localhost:8080"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 587
	}

	c.applyEnvOverrides()

	if c.App.Env == "prod" {
		// Las herramientas de desarrollo jamás en producción.
		c.App.DevTools = false
	}

	if len(c.JWT.Secret) < MinJWTSecretLen {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes, got %d", MinJWTSecretLen, len(c.JWT.Secret))
	}

	return &c, nil
}

// IsDev reporta si el proceso corre en modo desarrollo.
func (c *Config) IsDev() bool { return c.App.Env == "dev" }

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("PLATFORM_NAME"); ok {
		c.App.PlatformName = v
	}
	if v, ok := getEnvBool("DEV_TOOLS"); ok {
		c.App.DevTools = v
	}
	if v, ok := getEnvStr("PUBLIC_URL"); ok {
		c.App.PublicURL = v
	}

	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}

	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}

	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.JWT.Secret = v
	}

	if v, ok := getEnvStr("MAIL_FROM"); ok {
		c.Mail.From = v
	}
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.Mail.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.Mail.Port = v
	}
	if v, ok := getEnvStr("SMTP_USER"); ok {
		c.Mail.User = v
	}
	if v, ok := getEnvStr("SMTP_PASS"); ok {
		c.Mail.Pass = v
	}
	if v, ok := getEnvStr("SMTP_TLS_MODE"); ok {
		c.Mail.TLSMode = v
	}

	if v, ok := getEnvStr("SMS_GATEWAY_URL"); ok {
		c.SMS.GatewayURL = v
	}
	if v, ok := getEnvStr("SMS_API_KEY"); ok {
		c.SMS.APIKey = v
	}

	if v, ok := getEnvStr("MAIL_VALIDATION_API_KEY"); ok {
		c.Validation.MailAPIKey = v
	}
	if v, ok := getEnvStr("PHONE_VALIDATION_API_KEY"); ok {
		c.Validation.PhoneAPIKey = v
	}
}
