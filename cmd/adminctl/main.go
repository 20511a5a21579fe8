package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Iapetus-11/link-shortener/internal/infra/config"
	"github.com/Iapetus-11/link-shortener/internal/infra/database"
	"github.com/Iapetus-11/link-shortener/internal/infra/logger"
	"github.com/Iapetus-11/link-shortener/internal/infra/security"
	postgresrepo "github.com/Iapetus-11/link-shortener/internal/repository/postgres"
	"github.com/Iapetus-11/link-shortener/internal/usecase"
)

const usage = `usage: adminctl <command>

commands:
  create-platform       register a platform and print its API key (shown once)
  hash-admin-password   hash an operator password for ADMIN_PASSWORD_HASH
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch os.Args[1] {
	case "create-platform":
		if err := runCreatePlatform(ctx); err != nil {
			log.Fatalf("create-platform: %v", err)
		}
	case "hash-admin-password":
		if err := runHashAdminPassword(ctx); err != nil {
			log.Fatalf("hash-admin-password: %v", err)
		}
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runCreatePlatform(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("init postgres: %w", err)
	}
	defer pool.Close()

	hasher, err := newHasher(cfg)
	if err != nil {
		return err
	}

	name, err := prompt("Platform name: ")
	if err != nil {
		return err
	}

	repos := postgresrepo.NewRepositories(pool)
	platforms := usecase.NewPlatformService(repos.Platforms, hasher)

	platform, apiKey, err := platforms.Create(ctx, name)
	if err != nil {
		return err
	}

	fmt.Printf("id:      %s\n", platform.ID)
	fmt.Printf("name:    %s\n", platform.Name)
	fmt.Printf("api key: %s\n", apiKey)
	fmt.Println("The API key is shown once and cannot be recovered; only its hash is stored.")
	return nil
}

func runHashAdminPassword(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	hasher, err := newHasher(cfg)
	if err != nil {
		return err
	}

	password, err := prompt("Password: ")
	if err != nil {
		return err
	}

	if err := security.ValidateOperatorPassword(password); err != nil {
		return err
	}

	hash, err := hasher.Hash(ctx, hasher.Strong(), password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	fmt.Println(base64.RawURLEncoding.EncodeToString([]byte(hash)))
	return nil
}

func newHasher(cfg *config.AppConfig) (*security.Hasher, error) {
	hasher, err := security.NewHasher(
		security.Argon2Profile{
			Memory:      cfg.Argon2.Weak.Memory,
			Iterations:  cfg.Argon2.Weak.Iterations,
			Parallelism: cfg.Argon2.Weak.Parallelism,
			SaltLength:  cfg.Argon2.Weak.SaltLength,
			KeyLength:   cfg.Argon2.Weak.KeyLength,
		},
		security.Argon2Profile{
			Memory:      cfg.Argon2.Strong.Memory,
			Iterations:  cfg.Argon2.Strong.Iterations,
			Parallelism: cfg.Argon2.Strong.Parallelism,
			SaltLength:  cfg.Argon2.Strong.SaltLength,
			KeyLength:   cfg.Argon2.Strong.KeyLength,
		},
		cfg.Argon2.MaxConcurrent,
	)
	if err != nil {
		return nil, fmt.Errorf("init hasher: %w", err)
	}
	return hasher, nil
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("input is required")
	}
	return line, nil
}
