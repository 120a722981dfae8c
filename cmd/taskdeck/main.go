package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	googleadapter "github.com/ericfisherdev/taskdeck/internal/adapter/driven/googleapi"
	keyringadapter "github.com/ericfisherdev/taskdeck/internal/adapter/driven/keyring"
	sqliteadapter "github.com/ericfisherdev/taskdeck/internal/adapter/driven/sqlite"
	trelloadapter "github.com/ericfisherdev/taskdeck/internal/adapter/driven/trello"
	httphandler "github.com/ericfisherdev/taskdeck/internal/adapter/driving/http"
	"github.com/ericfisherdev/taskdeck/internal/application"
	"github.com/ericfisherdev/taskdeck/internal/config"
	"github.com/ericfisherdev/taskdeck/internal/domain/model"
	"github.com/ericfisherdev/taskdeck/internal/domain/port/driven"
)

// googleScopes is what the dashboard asks for at consent time: read-only
// calendar access plus read and modify (label/archive) on mail.
var googleScopes = []string{
	calendar.CalendarReadonlyScope,
	gmail.GmailReadonlyScope,
	gmail.GmailModifyScope,
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on a malformed secret key).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"google_oauth", cfg.HasGoogleOAuth(),
		"trello_env_credentials", cfg.HasTrelloCredentials(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Pick the secret store: system keychain when present, encrypted
	// database store otherwise.
	var secretStore driven.CredentialStore
	if keyringadapter.Available() {
		secretStore = keyringadapter.NewStore()
		slog.Info("secret store: system keychain")
	} else {
		secretStore = sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
		slog.Info("secret store: encrypted database", "key_set", cfg.SecretKey != nil)
	}

	// 6. Action log.
	logSvc := application.NewLogService(sqliteadapter.NewActionLogRepo(db), slog.Default())

	// 7. OAuth flow service and per-session token store.
	oauthSvc := application.NewOAuthService(&oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       googleScopes,
		Endpoint:     google.Endpoint,
	}, slog.Default())
	tokenStore := application.NewTokenStore(oauthSvc, secretStore, slog.Default())

	// 8. Credential resolution chain. Environment Trello credentials seed the
	// explicit source so they behave like user-entered input.
	explicit := application.NewExplicitSource()
	if cfg.HasTrelloCredentials() {
		explicit.Set(&model.Credential{
			Provider:    model.ProviderTrello,
			APIKey:      cfg.TrelloKey,
			AccessToken: cfg.TrelloToken,
		})
	}

	sources := []application.CredentialSource{
		explicit,
		application.NewSessionSource(tokenStore),
		application.NewSecretStoreSource(secretStore),
		application.NewFileSource(cfg.CredentialsDir),
	}
	if cfg.ServiceAccountFile != "" {
		sources = append(sources, application.NewServiceAccountSource(cfg.ServiceAccountFile, googleScopes))
	}
	resolver := application.NewResolver(slog.Default(), sources...)

	// 9. Provider client factories. A fresh client per call keeps credential
	// changes immediate.
	calendarFactory := func(ctx context.Context, cred *model.Credential) (driven.CalendarClient, error) {
		return googleadapter.NewCalendarClient(ctx, option.WithTokenSource(staticTokenSource(cred)))
	}
	mailFactory := func(ctx context.Context, cred *model.Credential) (driven.MailClient, error) {
		return googleadapter.NewMailClient(ctx, option.WithTokenSource(staticTokenSource(cred)))
	}
	taskFactory := func(_ context.Context, cred *model.Credential) (driven.TaskClient, error) {
		return trelloadapter.NewClient(cred.APIKey, cred.AccessToken), nil
	}

	// 10. Application services.
	calendarSvc := application.NewCalendarService(resolver, calendarFactory, logSvc)
	mailSvc := application.NewMailService(resolver, mailFactory, logSvc)
	taskSvc := application.NewTaskService(resolver, taskFactory, logSvc)

	// 11. HTTP handler and server.
	apiHandler := httphandler.NewHandler(calendarSvc, mailSvc, taskSvc, logSvc,
		oauthSvc, tokenStore, explicit, googleScopes, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("taskdeck started", "listen_addr", cfg.ListenAddr)

	// 12. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 13. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// staticTokenSource wraps a resolved credential for the Google client
// libraries. Refresh happens upstream in the token store, so the client sees
// a fixed token.
func staticTokenSource(cred *model.Credential) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cred.AccessToken,
		Expiry:      cred.Expiry,
	})
}
