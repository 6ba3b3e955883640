// blubbd es el backend de autenticación y cuentas de la plataforma.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/blubbai/backend/internal/cache"
	cachememory "github.com/blubbai/backend/internal/cache/memory"
	cacheredis "github.com/blubbai/backend/internal/cache/redis"
	"github.com/blubbai/backend/internal/config"
	"github.com/blubbai/backend/internal/email"
	authctl "github.com/blubbai/backend/internal/http/controllers/auth"
	toolsctl "github.com/blubbai/backend/internal/http/controllers/tools"
	userctl "github.com/blubbai/backend/internal/http/controllers/user"
	"github.com/blubbai/backend/internal/http/router"
	authsvc "github.com/blubbai/backend/internal/http/services/auth"
	usersvc "github.com/blubbai/backend/internal/http/services/user"
	"github.com/blubbai/backend/internal/metrics"
	"github.com/blubbai/backend/internal/observability/logger"
	"github.com/blubbai/backend/internal/security/password"
	"github.com/blubbai/backend/internal/sms"
	"github.com/blubbai/backend/internal/store/adapters/memory"
	"github.com/blubbai/backend/internal/store/adapters/pg"
	"github.com/blubbai/backend/internal/store/core"
	"github.com/blubbai/backend/internal/token"
	"github.com/blubbai/backend/internal/twofa"
	"github.com/blubbai/backend/internal/validation"
)

func main() {
	// .env es opcional; en prod las vars vienen del entorno real.
	_ = godotenv.Load()

	var cfgPath string

	root := &cobra.Command{
		Use:   "blubbd",
		Short: "Backend de autenticación y cuentas",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "ruta del config.yaml")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfgPath)
		},
	}
	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := "info"
	if cfg.IsDev() {
		level = "debug"
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: level, ServiceName: "blubbd"})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─── Store ───
	var repo core.Repository
	switch cfg.Storage.Driver {
	case "postgres":
		pgStore, err := pg.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer pgStore.Close()
		if err := pgStore.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		repo = pgStore
	case "memory":
		repo = memory.New()
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	log.Info("store ready", logger.String("driver", cfg.Storage.Driver))

	// ─── Cache ───
	var c cache.Cache
	switch cfg.Cache.Kind {
	case "redis":
		c = cacheredis.New(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB)
	default:
		ttl, err := time.ParseDuration(cfg.Cache.Memory.DefaultTTL)
		if err != nil {
			ttl = 2 * time.Minute
		}
		c = cachememory.New(ttl)
	}

	// ─── Tokens ───
	codec, err := token.NewCodec([]byte(cfg.JWT.Secret))
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}
	tokens := token.NewService(codec, repo)

	// ─── Colaboradores externos ───
	validator := validation.NewClient(c, cfg.Validation.MailAPIKey, cfg.Validation.PhoneAPIKey)

	mailer := email.NewMailer(email.FromConfig(email.SMTPConfig{
		Host:      cfg.Mail.Host,
		Port:      cfg.Mail.Port,
		Username:  cfg.Mail.User,
		Password:  cfg.Mail.Pass,
		FromEmail: cfg.Mail.From,
		TLSMode:   cfg.Mail.TLSMode,
	}), cfg.App.PlatformName, cfg.App.PublicURL)

	var smsSender sms.Sender
	if cfg.SMS.GatewayURL != "" {
		smsSender = sms.NewHTTPSender(cfg.SMS.GatewayURL, cfg.SMS.APIKey)
	} else {
		smsSender = sms.LogSender{}
	}

	dispatcher := twofa.NewDispatcher(mailer, smsSender)

	// ─── Servicios y controllers ───
	authService := authsvc.NewService(authsvc.Deps{
		Repo:       repo,
		HashParams: password.Default,
		Validator:  validator,
		Dispatcher: dispatcher,
		Mailer:     mailer,
		Platform:   cfg.App.PlatformName,
	})
	userService := usersvc.NewService(usersvc.Deps{
		Repo:       repo,
		HashParams: password.Default,
		Validator:  validator,
	})

	metricsHandler, err := metrics.Register(nil)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	handler := router.New(router.Deps{
		Auth:           authctl.NewController(authService, tokens, repo),
		User:           userctl.NewController(userService),
		Tools:          toolsctl.NewController(tokens, cfg.App.DevTools),
		Codec:          codec,
		MetricsHandler: metricsHandler,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
