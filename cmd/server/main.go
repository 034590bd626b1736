package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"chainbank-backend/internal/auth"
	"chainbank-backend/internal/chain"
	"chainbank-backend/internal/config"
	"chainbank-backend/internal/contract"
	"chainbank-backend/internal/db"
	"chainbank-backend/internal/events"
	"chainbank-backend/internal/handlers"
	"chainbank-backend/internal/middleware"
	"chainbank-backend/internal/repository"
	"chainbank-backend/internal/router"
	"chainbank-backend/internal/services"
	"chainbank-backend/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
	}

	if err := config.LoadConfig(*configPath); err != nil {
		logger.WithField("error", err.Error()).Fatal("Failed to load configuration")
	}
	cfg := config.AppConfig

	// Database
	database, err := db.Open(&cfg.Database)
	if err != nil {
		logger.WithField("error", err.Error()).Fatal("Failed to connect to database")
	}
	if err := db.Migrate(database); err != nil {
		logger.WithField("error", err.Error()).Fatal("Failed to run migrations")
	}

	// Chain backend and contract binding
	if !common.IsHexAddress(cfg.Chain.ContractAddress) {
		logger.WithField("address", cfg.Chain.ContractAddress).Fatal("Invalid bank contract address")
	}
	backend, err := chain.Dial(cfg.Chain.RPCEndpoints, cfg.Chain.ChainID, logger)
	if err != nil {
		logger.WithField("error", err.Error()).Fatal("Failed to connect to chain RPC")
	}

	abiJSON := contract.DefaultABI
	if loaded, err := contract.LoadABIFile(cfg.Chain.ABIPath); err == nil {
		abiJSON = loaded
	} else {
		logger.WithFields(logrus.Fields{
			"path":  cfg.Chain.ABIPath,
			"error": err.Error(),
		}).Warn("ABI artifact not readable, using built-in ABI")
	}
	bank, err := contract.NewBank(common.HexToAddress(cfg.Chain.ContractAddress), abiJSON)
	if err != nil {
		logger.WithField("error", err.Error()).Fatal("Failed to bind bank contract")
	}

	// The operator signer is optional; without it only client-signed
	// transactions are accepted.
	var signer chain.Signer
	if cfg.Chain.OperatorPrivateKey != "" {
		signer, err = chain.NewLocalKeySigner(cfg.Chain.OperatorPrivateKey)
		if err != nil {
			logger.WithField("error", err.Error()).Fatal("Invalid operator private key")
		}
		logger.WithField("operator", signer.Address().Hex()).Info("Operator signer configured")
	}

	// Optional NATS event publisher
	var publisher *events.Publisher
	if cfg.NATS.URL != "" {
		publisher, err = events.NewPublisher(cfg.NATS.URL, logger)
		if err != nil {
			logger.WithField("error", err.Error()).Warn("NATS unavailable, events disabled")
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	hub := ws.NewHub(logger)

	// Repositories and services
	userRepo := repository.NewUserRepository(database)
	txRepo := repository.NewSubmittedTxRepository(database)

	tokens := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenExpiryMinutes)*time.Minute,
		cfg.Auth.Issuer,
	)
	userService := services.NewUserService(userRepo, tokens, cfg.Auth.AdminTOTPSecret, publisher, logger)
	bankService := services.NewBankService(backend, signer, bank, &cfg.Chain, txRepo, publisher, hub, logger)

	// Handlers and router
	authMW := middleware.NewAuthMiddleware(tokens, userService, logger)
	engine := router.Setup(router.Deps{
		Config: cfg,
		BasicH: handlers.NewBasicHandler(),
		BankH:  handlers.NewBankHandler(bankService, logger),
		UserH:  handlers.NewUserHandler(userService, logger),
		AuthMW: authMW,
		Hub:    hub,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("addr", addr).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithField("error", err.Error()).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithField("error", err.Error()).Error("Forced shutdown")
	}
	logger.Info("Server stopped")
}
