package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/config"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/database"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/environment"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/object"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/sequence"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/user"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/services"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/web"
)

func main() {
	// Load configuration from secrets/.env and the environment
	cfg, err := config.Load("secrets/.env")
	if err != nil {
		panic(fmt.Sprintf("Error loading configuration: %s", err))
	}
	if err := cfg.ValidateServer(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %s", err))
	}

	// Create webserver logger
	logger, err := log.NewLogger(cfg.LogDevelopment, cfg.LogDebug, cfg.LogFile)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	stores, closeStores, err := openStores(cfg, logger)
	if err != nil {
		logger.Fatal("Error opening storage:", err)
	}
	defer closeStores()

	// Change events are optional
	var events services.EventPublisher = services.NopPublisher{}
	if cfg.RabbitMQIP != "" {
		eventService, err := services.NewEventService(cfg.RabbitMQIP, cfg.RabbitMQUser, cfg.RabbitMQPass, logger)
		if err != nil {
			logger.Panic("Error initializing event service:", err)
		}
		defer eventService.Shutdown()
		events = eventService
	} else {
		logger.Info("RABBITMQ_IP not set, change events are disabled")
	}

	clientService := services.NewClientService(stores, events, logger)
	server := web.NewWebServer(cfg.JWTSecret, cfg.JWTTTL, clientService, logger)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down server")
		if err := server.Shutdown(); err != nil {
			logger.Error("Error shutting down server:", err)
		}
	}()

	if err := server.Run(cfg.ListenAddress()); err != nil {
		logger.Fatal("Error starting web server:", err)
	}
}

// openStores connects the configured backend. The returned func releases it.
func openStores(cfg *config.Config, logger *log.Logger) (services.Stores, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageSQL:
		manager := database.NewManager(logger)
		if err := manager.Connect(cfg.PostgresDSN(), cfg.SQLitePath); err != nil {
			return services.Stores{}, nil, err
		}
		store := manager.Store()
		closeFn := func() {
			if sqlDB, err := manager.DB.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return services.Stores{Users: store, Environments: store, Objects: store}, closeFn, nil

	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI()))
		if err != nil {
			return services.Stores{}, nil, fmt.Errorf("creating MongoDB client: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			return services.Stores{}, nil, fmt.Errorf("pinging MongoDB: %w", err)
		}

		// Create separate managers with the MongoDB client
		sequences := sequence.NewSequenceManager(client, cfg.MongoDatabase, logger)
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("Error disconnecting MongoDB:", err)
			}
		}
		return services.Stores{
			Users:        user.NewUserManager(client, cfg.MongoDatabase, logger),
			Environments: environment.NewEnvironmentManager(client, cfg.MongoDatabase, sequences, logger),
			Objects:      object.NewObjectManager(client, cfg.MongoDatabase, sequences, logger),
		}, closeFn, nil
	}
}
