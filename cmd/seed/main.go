// Command seed provisions initial accounts. Employee and admin accounts have
// no self-service signup, so operators create them here.
//
//	go run ./cmd/seed -username admin -password secret -role ADMIN
package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

func main() {
	username := flag.String("username", "", "account username")
	password := flag.String("password", "", "account password")
	roleStr := flag.String("role", "USER", "account role: USER, EMPLOYEE or ADMIN")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("username and password are required")
	}
	role, ok := domain.ParseRole(*roleStr)
	if !ok {
		log.Fatalf("unknown role %q", *roleStr)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	users := repository.NewUserRepository(pg.PoolHandle())

	if _, err := users.GetByUsername(ctx, *username); err == nil {
		logger.Fatal("username already exists", zap.String("username", *username))
	} else if !errors.Is(err, pgx.ErrNoRows) {
		logger.Fatal("failed to check username", zap.Error(err))
	}

	hash, err := auth.HashPassword(*password, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to hash password", zap.Error(err))
	}

	user := &domain.User{
		Username:     *username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := users.Create(ctx, user); err != nil {
		logger.Fatal("failed to create user", zap.Error(err))
	}

	logger.Info("user created",
		zap.String("id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))
}
