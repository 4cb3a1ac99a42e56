// Package config loads service configuration from the environment. Flat
// struct, explicit defaults, no config files; main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAddr                = ":8080"
	defaultRegistryBaseURL     = "https://npiregistry.cms.hhs.gov/api/"
	defaultLitIndexBaseURL     = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"
	defaultDirectoryTimeout    = 15 * time.Second
	defaultCollaboratorTimeout = 30 * time.Second
	defaultRegistryCacheTTL    = 5 * time.Minute
	defaultMaxPublications     = 30
	defaultAuditBuffer         = 4096
)

// Config captures everything the server needs from its environment.
type Config struct {
	Addr string

	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string

	JWTSigningKey string

	RegistryBaseURL string
	LitIndexBaseURL string

	DirectoryTimeout    time.Duration
	CollaboratorTimeout time.Duration
	RegistryCacheTTL    time.Duration

	MaxPublications   int
	AuditBuffer       int
	EnrichmentEnabled bool
}

// FromEnv builds a Config from environment variables, applying defaults for
// anything unset. Malformed durations and integers fall back to defaults
// rather than failing startup.
func FromEnv() Config {
	return Config{
		Addr:                envString("DOSSIER_ADDR", defaultAddr),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            os.Getenv("DOSSIER_REDIS_URL"),
		KafkaBrokers:        envBrokers("DOSSIER_KAFKA_BROKERS"),
		JWTSigningKey:       os.Getenv("DOSSIER_JWT_SIGNING_KEY"),
		RegistryBaseURL:     envString("DOSSIER_REGISTRY_BASE_URL", defaultRegistryBaseURL),
		LitIndexBaseURL:     envString("DOSSIER_LITINDEX_BASE_URL", defaultLitIndexBaseURL),
		DirectoryTimeout:    envDuration("DOSSIER_DIRECTORY_TIMEOUT", defaultDirectoryTimeout),
		CollaboratorTimeout: envDuration("DOSSIER_COLLABORATOR_TIMEOUT", defaultCollaboratorTimeout),
		RegistryCacheTTL:    envDuration("DOSSIER_REGISTRY_CACHE_TTL", defaultRegistryCacheTTL),
		MaxPublications:     envInt("DOSSIER_MAX_PUBLICATIONS", defaultMaxPublications),
		AuditBuffer:         envInt("DOSSIER_AUDIT_BUFFER", defaultAuditBuffer),
		EnrichmentEnabled:   envBool("DOSSIER_ENRICHMENT_ENABLED", true),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envBrokers(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
