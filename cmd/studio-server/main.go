package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"

	"github.com/fiodorowphotography/studio/pkg/studio/api"
	"github.com/fiodorowphotography/studio/pkg/studio/config"
	"github.com/fiodorowphotography/studio/pkg/studio/mail"
)

type Config struct {
	Environment    string `env:"ENVIRONMENT" env-default:"development"`
	DatabaseURL    string `env:"DATABASE_URL" env-default:"memory"`
	StorageURL     string `env:"STORAGE_URL" env-default:"memory://"`
	KeyGenerator   string `env:"OBJECT_KEY_GENERATOR" env-default:"git-like"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" env-default:"41943040"`
	AutoMigrate    bool   `env:"AUTO_MIGRATE" env-default:"true"`
	EventLogging   bool   `env:"EVENT_LOGGING" env-default:"true"`
	JWTSecret      string `env:"STUDIO_JWT_SECRET"`
	ImageBaseURL   string `env:"IMAGE_BASE_URL"`
	SiteURL        string `env:"SITE_URL" env-default:"https://fiodorowphotography.pl"`
	S3AccessKeyID  string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretKey    string `env:"AWS_SECRET_ACCESS_KEY"`
	Mail           MailConfig
}

type MailConfig struct {
	ResendAPIKey string `env:"RESEND_API_KEY"`
	ResendURL    string `env:"RESEND_API_URL" env-default:"https://api.resend.com"`
	From         string `env:"MAIL_FROM" env-default:"Fiodorow Photography <kontakt@fiodorowphotography.pl>"`
	To           string `env:"MAIL_TO" env-default:"fiodorowphotography@gmail.com"`
}

func (c Config) options() []config.Option {
	opts := []config.Option{
		config.WithEnvironment(c.Environment),
		config.WithDatabaseURL(c.DatabaseURL),
		config.WithStorageURL(c.StorageURL),
		config.WithObjectKeyGenerator(c.KeyGenerator),
		config.WithMaxUploadBytes(c.MaxUploadBytes),
		config.WithAutoMigrate(c.AutoMigrate),
		config.WithEventLogging(c.EventLogging),
	}
	if c.S3AccessKeyID != "" {
		opts = append(opts, config.WithS3Credentials("s3", c.S3AccessKeyID, c.S3SecretKey))
	}
	return opts
}

func newMailer(c MailConfig) (mail.Mailer, error) {
	if c.ResendAPIKey == "" {
		return nil, nil
	}
	return mail.NewResend(mail.ResendConfig{
		APIKey:  c.ResendAPIKey,
		BaseURL: c.ResendURL,
		From:    c.From,
		To:      []string{c.To},
	})
}

func main() {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	serverConfig, err := config.Load(cfg.options()...)
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}
	if !serverConfig.IsDevelopment() && cfg.JWTSecret == "" {
		slog.Error("STUDIO_JWT_SECRET is required outside development")
		os.Exit(1)
	}

	ctx := context.Background()
	if serverConfig.DatabaseType == config.DatabasePostgres {
		if err := config.PingPostgres(ctx, serverConfig.DatabaseURL); err != nil {
			slog.Error("Failed to reach database", "err", err)
			os.Exit(1)
		}
	}

	svc, err := serverConfig.BuildService(ctx, slog.Default())
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}
	defer serverConfig.Close()

	mailer, err := newMailer(cfg.Mail)
	if err != nil {
		slog.Error("Failed to configure mailer", "err", err)
		os.Exit(1)
	}
	if mailer == nil {
		slog.Warn("RESEND_API_KEY is not set, contact form messages will not be sent")
	}

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	err = api.Register(server.R, api.Config{
		Service:      svc,
		Mailer:       mailer,
		JWTSecret:    cfg.JWTSecret,
		ImageBaseURL: cfg.ImageBaseURL,
		SiteURL:      cfg.SiteURL,
		Development:  serverConfig.IsDevelopment(),
		Logger:       slog.Default(),
	})
	if err != nil {
		slog.Error("Failed to register routes", "err", err)
		os.Exit(1)
	}

	slog.Info("Starting studio server",
		"environment", serverConfig.Environment,
		"database", serverConfig.DatabaseType,
		"storage", serverConfig.DefaultStorageBackend,
	)
	server.Run()
}
