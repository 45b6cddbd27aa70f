package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"fermata/internal/config"
	"fermata/internal/filestore"
	"fermata/internal/identity"
	"fermata/internal/jamendo"
	"fermata/internal/metadata"
	"fermata/internal/server"
	"fermata/internal/session"
	"fermata/internal/songstore"
	"fermata/internal/tunnel"
	"fermata/internal/watcher"
)

func main() {
	configPath := "./config.toml"

	// Initialize basic logger for startup
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded environment from .env file")
	}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Error loading configuration")
	}
	applyLogging(logger, cfg)

	// Load secrets from the environment / mounted credentials file
	secrets, err := config.LoadSecrets(config.DefaultCredentialsPath, cfg.Jamendo.Enabled)
	if err != nil {
		logger.WithError(err).Fatal("Error loading secrets")
	}

	// Initialize the file store for uploaded audio
	files, err := filestore.New(cfg.Storage.UploadDir, logger)
	if err != nil {
		logger.WithError(err).Fatal("Error initializing file store")
	}

	ctx := context.Background()

	// Firebase app backs both the identity provider and the song store
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(secrets.FirebaseCredentials))
	if err != nil {
		logger.WithError(err).Fatal("Error initializing Firebase app")
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Error initializing identity provider")
	}
	identityProvider := identity.NewFirebaseProvider(authClient, logger)

	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Error initializing song store")
	}
	defer firestoreClient.Close()
	songs := songstore.NewFirestoreStore(firestoreClient, logger)

	// Catalog search is optional
	var catalog *jamendo.Client
	if cfg.Jamendo.Enabled {
		catalog = jamendo.NewClient(&http.Client{Timeout: 10 * time.Second},
			cfg.Jamendo.BaseURL, secrets.JamendoClientID, logger)
	}

	extractor := metadata.NewExtractor(cfg.Storage.AllowedFormats, logger)

	sessionDuration, err := time.ParseDuration(cfg.Session.Duration)
	if err != nil {
		logger.WithError(err).Fatal("Invalid session duration in configuration")
	}
	sessions := session.NewManager(secrets.SecretKey, sessionDuration, cfg.Session.SecureCookies)

	// Optional watcher over the upload directory
	if cfg.Storage.WatchForChanges {
		w, err := watcher.New(files.Root(), extractor.IsAudioFile, logger)
		if err != nil {
			logger.WithError(err).Fatal("Error creating file watcher")
		}
		if err := w.Start(); err != nil {
			logger.WithError(err).Fatal("Error starting file watcher")
		}
		defer w.Stop()
	}

	srv, err := server.New(cfg, logger, sessions, identityProvider, songs, files, catalog, extractor)
	if err != nil {
		logger.WithError(err).Fatal("Error creating server")
	}

	// Optional public tunnel
	tun, err := tunnel.NewService(&cfg.Tunnel, logger)
	if err != nil {
		logger.WithError(err).Fatal("Error creating tunnel service")
	}
	if err := tun.Start(ctx, "http://"+cfg.GetAddress()); err != nil {
		logger.WithError(err).Fatal("Error starting tunnel")
	}
	defer tun.Stop()

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-c:
		logger.Info("Received shutdown signal")
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Fatal("Server error")
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error during shutdown")
	}
}

// applyLogging reconfigures the startup logger from the loaded config.
func applyLogging(logger *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
}
