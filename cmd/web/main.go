// cmd/web/main.go
//
// Launchpad – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load conf/.env (optional) and start a console bootstrap logger.
//
//  2. Load configuration (YAML → env overlay → vault references).
//
//  3. Start the daily rotating logger (tees to console in a TTY).
//
//  4. Register YAML form overrides, derive signing keys, and build the
//     theme, renderer, flash store, and CSRF service.
//
//  5. Open the database and run component migrations when a DSN is set.
//
//  6. Build the mailer (SMTP or log-only) and the submission handler.
//
//  7. Assemble the chi router: request ID, real IP, recoverer, security
//     headers, HTTPS redirect, request logger, and CSRF; then /metrics,
//     /assets/, and every component's routes.
//
//  8. Serve until SIGINT/SIGTERM, then drain.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/launchpad/internal/component"
	"github.com/yanizio/launchpad/internal/config"
	"github.com/yanizio/launchpad/internal/database"
	"github.com/yanizio/launchpad/internal/form"
	"github.com/yanizio/launchpad/internal/logger"
	"github.com/yanizio/launchpad/internal/message"
	"github.com/yanizio/launchpad/internal/middleware"
	"github.com/yanizio/launchpad/internal/server"
	"github.com/yanizio/launchpad/internal/session"
	"github.com/yanizio/launchpad/internal/submission"
	"github.com/yanizio/launchpad/internal/theme"
	"github.com/yanizio/launchpad/internal/view"

	_ "github.com/yanizio/launchpad/components/contact"
	_ "github.com/yanizio/launchpad/components/pages"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// deriveKey gives each signing purpose its own key so a token minted for
// one cannot be replayed as the other.
func deriveKey(secret, purpose string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("launchpad/" + purpose))
	return mac.Sum(nil)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		zap.S().Errorw("launchpad stopped", "err", err)
		_ = zap.S().Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// .env next to the working directory; config.Load also reads conf/.env.
	_ = godotenv.Load()
	boot := logger.Bootstrap()

	//
	// ── 1.  Configuration and logging ──────────────────────────────────
	//
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	logOut, err := logger.New(cfg.Paths.LogDir, runningInTTY())
	if err != nil {
		boot.Warnw("file logger unavailable, staying on console", "err", err)
		logOut = boot
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 2.  Forms, keys, theme, and views ──────────────────────────────
	//
	ids, err := form.RegisterForms(cfg.Paths.FormsDir)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		logOut.Infow("form overrides registered", "forms", ids, "dir", cfg.Paths.FormsDir)
	}

	csrf, err := form.NewCSRF(deriveKey(cfg.Site.SecretKey, "csrf"), cfg.Site.CSRFTimeLimit)
	if err != nil {
		return err
	}
	flashes := session.NewFlashes(deriveKey(cfg.Site.SecretKey, "flash"), cfg.HTTP.ForceHTTPS)

	th, err := theme.Load(cfg.Paths.ThemeDir, view.Defaults())
	if err != nil {
		return err
	}
	views, err := view.New(th, csrf, cfg.Site.Name)
	if err != nil {
		return err
	}
	logOut.Infow("theme loaded", "theme", th.Name, "root", th.Root)

	//
	// ── 3.  Persistence (optional) ─────────────────────────────────────
	//
	var opts []submission.Option
	if cfg.Database.DSN != "" {
		db, err := database.OpenWithOptions(ctx, cfg.Database.DSN,
			cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(ctx, db, component.Migrations()); err != nil {
			return err
		}
		opts = append(opts, submission.WithStore(database.NewSubmissionStore(db)))
		logOut.Infow("database online")
	} else {
		logOut.Warnw("database.dsn not set; submissions are logged only")
	}

	//
	// ── 4.  Mail (optional) ────────────────────────────────────────────
	//
	var mailer message.Mailer = message.LogMailer{Log: logOut}
	if cfg.Mail.Enabled() {
		m, err := message.NewSMTPMailer(message.SMTPConfig{
			Server:   cfg.Mail.Server,
			Port:     cfg.Mail.Port,
			UseTLS:   cfg.Mail.UseTLS,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			Timeout:  cfg.Mail.Timeout,
		})
		if err != nil {
			return err
		}
		mailer = m
	}
	opts = append(opts, submission.WithMailer(mailer, cfg.Mail.NotifyTo...))

	submit := submission.New(logOut, opts...)

	//
	// ── 5.  Router ─────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security)
	r.Use(middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS))
	r.Use(middleware.RequestLogger(logOut))

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/assets/*", http.StripPrefix("/assets/", th.AssetHandler()))

	var mountErr error
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF(csrf))
		mountErr = component.Mount(r, component.Deps{
			Log:     logOut,
			Views:   views,
			Flashes: flashes,
			Submit:  submit,
		})
	})
	if mountErr != nil {
		return mountErr
	}

	//
	// ── 6.  Serve ──────────────────────────────────────────────────────
	//
	logOut.Infow("launchpad starting",
		"addr", cfg.HTTP.ListenAddr,
		"root", cfg.Paths.Root,
		"log_dir", filepath.Clean(cfg.Paths.LogDir),
	)
	return server.Run(ctx, server.New(cfg.HTTP.ListenAddr, r), logOut)
}
