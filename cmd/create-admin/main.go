// Command create-admin creates an ADMIN user if none exists for the given
// email. Running it again for the same email changes nothing.
//
//	create-admin -email admin@example.com -password '...'
//
// The password may also come from ADMIN_PASSWORD so it stays out of shell
// history. Store settings are read from the same variables as the server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/princinho/knowledgebase/auth"
	"github.com/princinho/knowledgebase/config"
	"github.com/princinho/knowledgebase/database"
	"github.com/princinho/knowledgebase/services"
)

type settings struct {
	config.Database
	BcryptCost    int    `env:"BCRYPT_COST" envDefault:"12"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(logger, os.Args[1:]); err != nil {
		logger.Error("create-admin failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	var s settings
	if err := env.Parse(&s); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	fl := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	email := fl.String("email", s.AdminEmail, "admin email")
	password := fl.String("password", s.AdminPassword, "admin password (min 8 characters)")
	if err := fl.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		fl.Usage()
		return errors.New("email and password are required")
	}
	if err := s.Database.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stores, closeStores, err := database.Open(ctx, database.Options{
		Driver:  s.DatabaseDriver,
		URI:     s.MongoURI,
		Name:    s.DatabaseName,
		Timeout: s.StoreTimeout,
	})
	if err != nil {
		return err
	}
	defer func() { _ = closeStores(context.Background()) }()

	hasher, err := auth.NewHasher(s.BcryptCost, 1)
	if err != nil {
		return err
	}
	created, err := services.NewUserService(stores.Users, hasher, logger).Bootstrap(ctx, *email, *password)
	if err != nil {
		return err
	}
	if created {
		logger.Info("admin created", "email", *email)
	} else {
		logger.Info("admin already exists, nothing to do", "email", *email)
	}
	return nil
}
