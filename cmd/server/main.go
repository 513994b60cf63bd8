// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"haulpass/internal/credential"
	"haulpass/internal/identity"
	identitymetrics "haulpass/internal/identity/metrics"
	identitystore "haulpass/internal/identity/store"
	"haulpass/internal/ledger"
	"haulpass/internal/platform/config"
	"haulpass/internal/platform/httpserver"
	"haulpass/internal/platform/logger"
	platformredis "haulpass/internal/platform/redis"
	"haulpass/internal/presentation"
	"haulpass/internal/resolver"
	httptransport "haulpass/internal/transport/http"
	"haulpass/internal/vault"
	"haulpass/internal/verifier"
	verifiermetrics "haulpass/internal/verifier/metrics"
	"haulpass/internal/wallet"
	audit "haulpass/pkg/platform/audit"
	auditpub "haulpass/pkg/platform/audit/publisher"
	auditkafka "haulpass/pkg/platform/audit/store/kafka"
	auditmemory "haulpass/pkg/platform/audit/store/memory"
	pkgstrings "haulpass/pkg/platform/strings"
)

func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Audit sink: Kafka when brokers are configured, in-memory otherwise.
	var auditStore audit.Store
	if cfg.AuditBrokers != "" {
		brokers := pkgstrings.DedupeAndTrim(strings.Split(cfg.AuditBrokers, ","))
		kafkaStore, err := auditkafka.New(ctx, brokers, cfg.AuditTopic)
		if err != nil {
			log.Error("audit kafka setup failed", "error", err)
			os.Exit(1)
		}
		defer kafkaStore.Close()
		auditStore = kafkaStore
	} else {
		auditStore = auditmemory.NewInMemoryStore()
	}
	auditPublisher := auditpub.NewPublisher(auditStore, auditpub.WithLogger(log), auditpub.WithAsyncBuffer(256))
	defer auditPublisher.Close()

	ledgerClient := ledger.NewHTTP(cfg.APIEndpoint, cfg.IdentityPackageID)
	vaults := vault.NewFileProvider(cfg.DataDir, cfg.VaultPassword)
	identityStore := identitystore.NewFile(cfg.DataDir)
	wallets := wallet.NewFile(cfg.DataDir)

	identities, err := identity.New(identityStore, vaults, ledgerClient,
		identity.WithLogger(log),
		identity.WithMetrics(identitymetrics.New()),
		identity.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		log.Error("identity service setup failed", "error", err)
		os.Exit(1)
	}

	credentials, err := credential.New(identities, vaults, wallets,
		credential.WithLogger(log),
		credential.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		log.Error("credential service setup failed", "error", err)
		os.Exit(1)
	}

	presentations, err := presentation.New(identities, vaults, wallets,
		presentation.WithLogger(log),
		presentation.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		log.Error("presentation service setup failed", "error", err)
		os.Exit(1)
	}

	resolverOpts := []resolver.Option{resolver.WithLogger(log)}
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis setup failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		resolverOpts = append(resolverOpts, resolver.WithCache(resolver.NewRedisCache(redisClient.Client)))
	} else {
		resolverOpts = append(resolverOpts, resolver.WithCache(resolver.NewMemoryCache()))
	}

	documents, err := resolver.New(ledgerClient, resolverOpts...)
	if err != nil {
		log.Error("resolver setup failed", "error", err)
		os.Exit(1)
	}

	verifierService, err := verifier.New(documents,
		verifier.WithLogger(log),
		verifier.WithMetrics(verifiermetrics.New()),
		verifier.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		log.Error("verifier setup failed", "error", err)
		os.Exit(1)
	}

	driver := httptransport.NewDriverHandler(identities, credentials, presentations, verifierService, wallets, log)
	router := httptransport.NewRouter(driver, log)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting haulpass", "addr", cfg.Addr, "ledger", cfg.APIEndpoint)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
