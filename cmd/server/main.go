package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/interviewly/go-auth"
	"github.com/interviewly/go-auth/social"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// ServerConfig is populated from the environment. AUTH_SIGNING_KEY has no
// default on purpose; the process must not start without one.
type ServerConfig struct {
	Port             string        `env:"PORT" envDefault:"8080"`
	SigningKey       string        `env:"AUTH_SIGNING_KEY,notEmpty"`
	TokenTTL         time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"1h"`
	ExtendedTokenTTL time.Duration `env:"AUTH_EXTENDED_TOKEN_TTL" envDefault:"168h"`
	BcryptCost       int           `env:"AUTH_BCRYPT_COST" envDefault:"0"`
	Issuer           string        `env:"AUTH_ISSUER" envDefault:"go-auth"`
	Audience         []string      `env:"AUTH_AUDIENCE" envSeparator:","`
	ContextKey       string        `env:"AUTH_CONTEXT_KEY" envDefault:"user"`
	DBDSN            string        `env:"DB_DSN" envDefault:"file:auth.db"`
}

func (c ServerConfig) GetSigningKey() string              { return c.SigningKey }
func (c ServerConfig) GetTokenTTL() time.Duration         { return c.TokenTTL }
func (c ServerConfig) GetExtendedTokenTTL() time.Duration { return c.ExtendedTokenTTL }
func (c ServerConfig) GetIssuer() string                  { return c.Issuer }
func (c ServerConfig) GetAudience() []string              { return c.Audience }
func (c ServerConfig) GetContextKey() string              { return c.ContextKey }
func (c ServerConfig) GetAuthScheme() string              { return "Bearer" }
func (c ServerConfig) GetTokenLookup() string             { return "header:Authorization" }

// slogAdapter bridges the structured logger into the auth.Logger surface.
type slogAdapter struct {
	logger *slog.Logger
}

func (l slogAdapter) Debug(format string, args ...any) { l.logger.Debug(fmt.Sprintf(format, args...)) }
func (l slogAdapter) Info(format string, args ...any)  { l.logger.Info(fmt.Sprintf(format, args...)) }
func (l slogAdapter) Error(format string, args ...any) { l.logger.Error(fmt.Sprintf(format, args...)) }

func main() {
	lgr := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(lgr); err != nil {
		lgr.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(lgr *slog.Logger) error {
	cfg := ServerConfig{}
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if cfg.BcryptCost > 0 {
		if err := auth.SetBcryptCost(cfg.BcryptCost); err != nil {
			return fmt.Errorf("bcrypt cost: %w", err)
		}
	}

	db, err := openDatabase(cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := applyMigrations(context.Background(), db); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	auther, err := auth.NewAuthenticator(repo, cfg)
	if err != nil {
		return fmt.Errorf("build authenticator: %w", err)
	}
	auther.WithLogger(slogAdapter{logger: lgr.With("component", "auth")})

	app := fiber.New(fiber.Config{
		AppName: "go-auth",
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	protected := auth.ProtectedRoute(repo.Users(), auther.TokenService(), cfg)

	auth.RegisterAuthRoutes(app, protected, auth.WithControllerAuther(auther))
	social.RegisterRoutes(app.Group("/auth"))

	errC := make(chan error, 1)
	go func() {
		errC <- app.Listen(":" + cfg.Port)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errC:
		return err
	case sig := <-stop:
		lgr.Info("shutting down", "signal", sig.String())
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}

func openDatabase(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// applyMigrations runs the embedded SQL files in filename order. The
// statements are idempotent so re-running on boot is safe.
func applyMigrations(ctx context.Context, db *bun.DB) error {
	root := auth.GetMigrationsFS()

	var files []string
	err := fs.WalkDir(root, "data/sql/migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	sort.Strings(files)

	for _, file := range files {
		contents, err := fs.ReadFile(root, file)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(contents)); err != nil {
			return fmt.Errorf("migration %s: %w", file, err)
		}
	}

	return nil
}
