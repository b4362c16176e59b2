package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"jobauth/internal/authz"
	"jobauth/internal/config"
	"jobauth/internal/domain"
	"jobauth/internal/notify"
	"jobauth/internal/observability/logging"
	"jobauth/internal/observability/metrics"
	impl "jobauth/internal/service/impl"
	"jobauth/internal/store"
	"jobauth/internal/token"
	httpt "jobauth/internal/transport/http"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const serviceName = "jobauth"

func main() {
	cfg := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	slog.SetDefault(logger)

	logger.Info("starting service")

	metrics.MustRegister(serviceName)

	gdb, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	if err := gdb.AutoMigrate(&domain.Credential{}); err != nil {
		logger.Error("automigrate", "error", err)
		os.Exit(1)
	}
	st := store.New(gdb)

	clock := token.SystemClock()

	codec, err := token.NewCodec(cfg.CookieSecret)
	if err != nil {
		logger.Error("cookie codec", "error", err)
		os.Exit(1)
	}
	issuer := token.NewIssuer(token.IssuerConfig{
		AccessSecret:  []byte(cfg.AccessSecret),
		RefreshSecret: []byte(cfg.RefreshSecret),
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}, clock)

	session := authz.NewSession(codec, issuer, cfg.CookieMaxAge, cfg.SecureCookies)

	security := impl.NewSecurityServiceImpl(st, impl.NewPasswordServiceBcrypt(), issuer, notify.LogNotifier{}, clock, impl.SecurityConfig{
		MaxFailedLogins:  cfg.MaxFailedLogins,
		PasswordResetURL: cfg.PasswordResetURL,
	})
	twoFactor := impl.NewTwoFactorServiceImpl(st, clock, cfg.TwoFactorIssuer)

	handler := httpt.NewHandler(security, twoFactor, session, codec, cfg.RefreshTTL)
	router := httpt.NewRouter(handler, httpt.RouterConfig{
		CORSOrigins:    cfg.CORSOrigins,
		LoginLimit:     10,
		TwoFactorLimit: 5,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("jobauth service listening", "addr", srv.Addr, "env", cfg.Environment)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
