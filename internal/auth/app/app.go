package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/studyhall-app/studyhall/internal/auth/http"
	"github.com/studyhall-app/studyhall/internal/auth/service"
	"github.com/studyhall-app/studyhall/internal/auth/store"
	"github.com/studyhall-app/studyhall/internal/auth/store/drivers/sqlite"
	"github.com/studyhall-app/studyhall/pkg/cryptox"
	"github.com/studyhall-app/studyhall/pkg/jwtx"
	"github.com/studyhall-app/studyhall/pkg/mailx"
	"github.com/studyhall-app/studyhall/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the identity service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	codec  *jwtx.HS256
	mailer mailx.Mailer

	tenantService    *service.TenantService
	authService      *service.AuthService
	tokenService     *service.TokenService
	passwordService  *service.PasswordService
	provisionService *service.ProvisionService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "identity-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	app.codec = jwtx.NewHS256([]byte(cfg.JWTSecret), cfg.Issuer)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initMailer(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()

	if err := app.bootstrap(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("identity service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down identity service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("identity service stopped")
	return nil
}

// initDatabase opens the store and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initMailer() error {
	switch app.cfg.MailProvider {
	case "ses":
		mailer, err := mailx.NewSESMailer(context.Background(), app.cfg.MailFrom)
		if err != nil {
			return fmt.Errorf("failed to initialize SES mailer: %w", err)
		}
		app.mailer = mailer
	default:
		app.mailer = &mailx.LogMailer{Logger: app.logger}
	}
	return nil
}

func (app *Application) initServices() {
	app.tenantService = &service.TenantService{Store: app.db}

	app.authService = &service.AuthService{
		Store:            app.db,
		Tenants:          app.tenantService,
		MaxLoginAttempts: app.cfg.MaxLoginAttempts,
		LockoutDuration:  app.cfg.LockoutDuration,
		EnforceLockout:   app.cfg.LockoutEnforcement,
	}

	app.tokenService = &service.TokenService{
		Codec:      app.codec,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	}

	app.passwordService = &service.PasswordService{
		Store:             app.db,
		Mailer:            app.mailer,
		MinPasswordLength: app.cfg.MinPasswordLength,
		OTPTTL:            app.cfg.OTPTTL,
	}

	app.provisionService = &service.ProvisionService{Store: app.db}
}

// bootstrap seeds the first system admin when configured and none exists.
// The generated password is logged once; the account carries a forced
// password change.
func (app *Application) bootstrap() error {
	if app.cfg.BootstrapAdminUsername == "" || app.cfg.BootstrapAdminEmail == "" {
		return nil
	}

	tempPassword, created, err := app.provisionService.EnsureSystemAdmin(
		context.Background(),
		app.cfg.BootstrapAdminUsername,
		app.cfg.BootstrapAdminEmail,
	)
	if err != nil {
		return fmt.Errorf("failed to bootstrap system admin: %w", err)
	}
	if created {
		app.logger.Info("initial system admin created",
			"username", app.cfg.BootstrapAdminUsername,
			"temporary_password", tempPassword,
		)
	}
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.TokenService = app.tokenService
	router.PasswordService = app.passwordService
	router.TenantService = app.tenantService
	router.ProvisionService = app.provisionService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
