package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/auth"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/config"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/handler"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/identity"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/mailer"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/mirror"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/objectstore"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/registry"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/repository"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/server"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/usecase"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg := config.Load(&logger)

	if cfg.Environment == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	logger = logger.With().Str("service", cfg.ServiceName).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	if err := mongoClient.Ping(bootCtx, readpref.Primary()); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}

	db := mongoClient.Database(cfg.Mongo.Database)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Mirror.Addr,
		Password: cfg.Mirror.Password,
		DB:       cfg.Mirror.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(bootCtx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping redis")
	}

	jwtAuth := auth.NewJWTAuthenticator(cfg.Identity.TokenIssuer, cfg.Identity.TokenIssuer)

	identityProvider, err := identity.NewGoogleIdentityProvider(bootCtx, cfg.Identity, cfg.ExternalTimeout, jwtAuth)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create identity provider client")
	}

	uploader, err := objectstore.NewS3Uploader(bootCtx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create object store client")
	}

	mail := mailer.NewMailer(cfg.SMTP)
	profileMirror := mirror.NewRedisStore(redisClient)

	userRepo := repository.NewUserMongoRepository(bootCtx, &logger, db)
	applicationRepo := repository.NewApplicationMongoRepository(bootCtx, &logger, db)
	resetTokenRepo := repository.NewPasswordResetTokenMongoRepository(bootCtx, &logger, db)

	syncUsecase := usecase.NewSyncUsecase(identityProvider, profileMirror, &logger)
	verificationUsecase := usecase.NewVerificationUsecase(userRepo, syncUsecase, mail, cfg.Verification, &logger)
	authUsecase := usecase.NewAuthUsecase(userRepo, syncUsecase, verificationUsecase, identityProvider, &logger)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(
		userRepo, resetTokenRepo, identityProvider, jwtAuth, mail, cfg.Identity, cfg.PasswordReset, &logger,
	)
	accountUsecase := usecase.NewAccountUsecase(userRepo, applicationRepo, identityProvider, profileMirror, mail, &logger)
	applicationUsecase := usecase.NewApplicationUsecase(userRepo, applicationRepo, uploader)

	validate, trans, err := handler.NewValidator()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build request validator")
	}

	handlers := server.Handlers{
		Auth:          handler.NewAuthHandler(authUsecase, validate, trans, &logger),
		Verification:  handler.NewVerificationHandler(verificationUsecase, validate, trans, &logger),
		PasswordReset: handler.NewPasswordResetHandler(passwordResetUsecase, validate, trans, &logger),
		Account:       handler.NewAccountHandler(accountUsecase, validate, trans, &logger),
		Application:   handler.NewApplicationHandler(applicationUsecase, validate, trans, &logger),
		Health:        handler.NewHealthHandler(mongoClient, redisClient, &logger),
	}

	router := server.NewRouter(cfg, jwtAuth, handlers, &logger)
	srv := server.New(cfg, router, &logger)

	consulRegistry, err := registry.New(cfg.Consul, cfg.ServiceName, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register with consul")
	}
	defer consulRegistry.Deregister()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}
