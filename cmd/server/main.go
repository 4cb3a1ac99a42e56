// Command server runs the physician dossier API: config and logger first,
// then stores, collaborator clients, the pipeline, the audit publisher, and
// finally the HTTP router with graceful shutdown.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/audit"
	auditkafka "github.com/stinkypony1968-a11y/physician-dossier/internal/audit/kafka"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/dossier"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/dossier/handler"
	dossiermetrics "github.com/stinkypony1968-a11y/physician-dossier/internal/dossier/metrics"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/enrichment"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/identity"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/litindex/pubmed"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/payments"
	memorystore "github.com/stinkypony1968-a11y/physician-dossier/internal/payments/store/memory"
	pgstore "github.com/stinkypony1968-a11y/physician-dossier/internal/payments/store/postgres"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/platform/config"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/platform/httpserver"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/platform/logger"
	platformmetrics "github.com/stinkypony1968-a11y/physician-dossier/internal/platform/metrics"
	platformredis "github.com/stinkypony1968-a11y/physician-dossier/internal/platform/redis"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/publications"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/refdata"
	registrycache "github.com/stinkypony1968-a11y/physician-dossier/internal/registry/cache"
	registrymetrics "github.com/stinkypony1968-a11y/physician-dossier/internal/registry/metrics"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/registry/npi"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/httputil"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/middleware/auth"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/middleware/logging"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/middleware/metadata"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/middleware/requestid"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/platform/middleware/requesttime"
)

// paymentsStore is everything main needs from a payments backend: line items
// for aggregation, provider lookup for identity resolution, and a health
// probe for readiness.
type paymentsStore interface {
	payments.Store
	identity.PaymentsDirectory
	Health(ctx context.Context) error
}

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx := context.Background()
	tables := refdata.Default()

	var store paymentsStore
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			log.Error("ping postgres", "error", err)
			os.Exit(1)
		}
		store = pgstore.New(pool)
	} else {
		log.Warn("DATABASE_URL not set, serving the in-memory development fixture")
		store = memorystore.New(developmentFixture()...)
	}

	cache, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close()
	}

	var registryClient identity.RegistryClient = npi.New(cfg.RegistryBaseURL, cfg.CollaboratorTimeout)
	if cache != nil {
		registryClient = registrycache.New(registryClient, cache.Client, cfg.RegistryCacheTTL, registrymetrics.New(), log)
	}

	sinks := []audit.Sink{audit.NewMemorySink()}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := auditkafka.New(cfg.KafkaBrokers, auditkafka.DefaultTopic)
		if err != nil {
			log.Error("build kafka audit sink", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()

		ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = kafkaSink.EnsureTopic(ensureCtx)
		cancel()
		if err != nil {
			log.Error("ensure audit topic", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, kafkaSink)
	}
	publisher := audit.NewPublisher(sinks, log, audit.WithBufferSize(cfg.AuditBuffer))

	var enricher dossier.EducationEnricher
	if cfg.EnrichmentEnabled {
		enricher = enrichment.NewEnricher(enrichment.NewFetcher(cfg.DirectoryTimeout), tables.SocietyRules, log)
	} else {
		log.Info("education enrichment disabled")
	}

	service := dossier.NewService(
		identity.NewNormalizer(tables.TitlePrefixes, tables.CredentialSuffixes),
		identity.NewResolver(store, registryClient, tables.TargetSpecialties, log),
		payments.NewAggregator(store, tables.DesignatedOrg, log),
		publications.NewMatcher(pubmed.New(cfg.LitIndexBaseURL, cfg.CollaboratorTimeout), publications.TablesFrom(tables), log),
		enricher,
		publisher,
		dossiermetrics.New(),
		log,
	)

	router := newRouter(cfg, log, service, store, cache)

	srv := httpserver.New(cfg.Addr, router)
	go func() {
		log.Info("dossier service listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	// The audit backlog drains after the server stops accepting requests so
	// nothing can enqueue behind the drain.
	if err := publisher.Close(shutdownCtx); err != nil {
		log.Error("audit publisher drain failed", "error", err)
	}
}

func newRouter(cfg config.Config, log *slog.Logger, service handler.Service, store paymentsStore, cache *platformredis.Client) chi.Router {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(logging.Middleware(log, platformmetrics.New()))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readiness(store, cache))
	r.Handle("/metrics", promhttp.Handler())

	dossierHandler := handler.New(service, log)
	r.Route("/v1", func(r chi.Router) {
		if cfg.JWTSigningKey != "" {
			r.Use(auth.RequireBearer(auth.NewValidator(cfg.JWTSigningKey), log))
		}
		dossierHandler.Register(r)
	})
	if cfg.JWTSigningKey == "" {
		log.Warn("DOSSIER_JWT_SIGNING_KEY not set, API is open")
	}

	return r
}

// readiness pings each configured dependency and reports per-dependency
// status. The cache is optional; its absence is not a readiness failure.
func readiness(store paymentsStore, cache *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps := map[string]string{}
		ready := true

		if err := store.Health(r.Context()); err != nil {
			deps["payments_store"] = err.Error()
			ready = false
		} else {
			deps["payments_store"] = "ok"
		}

		if cache != nil {
			if err := cache.Health(r.Context()); err != nil {
				deps["cache"] = err.Error()
				ready = false
			} else {
				deps["cache"] = "ok"
			}
		}

		status := http.StatusOK
		body := map[string]any{"status": "ready", "dependencies": deps}
		if !ready {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
		httputil.WriteJSON(w, status, body)
	}
}
