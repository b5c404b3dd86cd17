package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/items"
	"github.com/erazemk/najdeno/internal/media"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
	"github.com/erazemk/najdeno/internal/web"
)

const usage = `Usage: najdeno [serve] [flags]
       najdeno adduser [flags] <username>
       najdeno passwd [flags] <username>
       najdeno deluser [flags] <username>

Serve flags:
  -c, -config <path>      config file (default: ./najdeno.yaml if present)
  -d, -db <path>          SQLite database path
  -a, -addr <host:port>   listen address
  -m, -media <dir>        directory for uploaded photos
  -u, -user <name>        admin username on first run
  -l, -log <path>         log file path (default: stdout/stderr only)
  -h, -help               show this help and exit

Account flags:
  -c, -config <path>      config file
  -d, -db <path>          SQLite database path
  -r, -role <role>        adduser only: admin, staff or user (default: staff)

Adduser and passwd read the password from NAJDENO_PASSWORD and generate one
otherwise.
Settings can also be given as NAJDENO_* environment variables or in a .env file.
`

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe(args)
	case "adduser", "passwd", "deluser":
		err = runAccount(cmd, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", cmd, usage)
		os.Exit(1)
	}

	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprint(os.Stdout, usage)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// stringFlag registers a flag under a long and a short name.
func stringFlag(fs *flag.FlagSet, p *string, long, short string) {
	fs.StringVar(p, long, "", "")
	fs.StringVar(p, short, "", "")
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {}
	return fs
}

func runServe(args []string) error {
	fs := newFlagSet("serve")
	var configPath, dbPath, addr, mediaDir, adminUser, logPath string
	stringFlag(fs, &configPath, "config", "c")
	stringFlag(fs, &dbPath, "db", "d")
	stringFlag(fs, &addr, "addr", "a")
	stringFlag(fs, &mediaDir, "media", "m")
	stringFlag(fs, &adminUser, "user", "u")
	stringFlag(fs, &logPath, "log", "l")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	override(&cfg.Database.Path, dbPath)
	override(&cfg.Server.Addr, addr)
	override(&cfg.Media.Dir, mediaDir)
	override(&cfg.Admin.Username, adminUser)
	override(&cfg.Log.Path, logPath)

	closeLog, err := setupLogger(cfg.Log.Path)
	if err != nil {
		return err
	}
	defer closeLog()

	return serve(cfg)
}

func serve(cfg *config.Config) error {
	ctx := context.Background()

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	slog.Info("database ready", "path", cfg.Database.Path)

	if err := bootstrapAdmin(ctx, database, cfg.Admin.Username, os.Stdout); err != nil {
		return err
	}

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return err
	}

	mediaStore, err := media.New(cfg.Media.Dir)
	if err != nil {
		return err
	}

	svc := &items.Service{DB: database, Media: mediaStore}
	gate := &auth.Gate{DB: database, Secret: jwtSecret, TokenTTL: cfg.Auth.TokenTTL}
	srv, err := web.NewServer(svc, gate, auth.NewLoginLimiter(cfg.Security.LoginRatePerMin))
	if err != nil {
		return err
	}
	srv.CookieSecure = cfg.Auth.CookieSecure

	if cfg.Security.CSRFEnabled {
		key := cfg.Security.CSRFKey
		if key == "" {
			if key, err = store.GetSecret(ctx, database, store.SettingCSRFKey); err != nil {
				return err
			}
		}
		if srv.CSRFKey, err = hex.DecodeString(key); err != nil {
			return fmt.Errorf("decoding csrf key: %w", err)
		}
	} else {
		slog.Warn("csrf protection disabled")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           web.NewRouter(srv),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// runAccount handles the account management subcommands.
func runAccount(cmd string, args []string) error {
	fs := newFlagSet(cmd)
	var configPath, dbPath, role string
	stringFlag(fs, &configPath, "config", "c")
	stringFlag(fs, &dbPath, "db", "d")
	if cmd == "adduser" {
		stringFlag(fs, &role, "role", "r")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%s takes exactly one username", cmd)
	}
	if role == "" {
		role = model.RoleStaff
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	override(&cfg.Database.Path, dbPath)

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	ctx := context.Background()
	username := fs.Arg(0)
	password := os.Getenv("NAJDENO_PASSWORD")

	switch cmd {
	case "adduser":
		generated, err := createAccount(ctx, database, username, password, role)
		if err != nil {
			return err
		}
		if password == "" {
			printCredentials(os.Stdout, "Account created:", username, generated)
		}
	case "passwd":
		generated, err := resetPassword(ctx, database, username, password)
		if err != nil {
			return err
		}
		if password == "" {
			printCredentials(os.Stdout, "Password changed:", username, generated)
		}
	case "deluser":
		return deleteAccount(ctx, database, username)
	}
	return nil
}

func override(dst *string, flagValue string) {
	if flagValue != "" {
		*dst = flagValue
	}
}
