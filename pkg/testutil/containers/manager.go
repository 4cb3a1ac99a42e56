//go:build integration

// Package containers manages shared testcontainers instances for integration tests.
// Containers are started lazily, shared across suites in the same test binary, and
// reaped by Ryuk when the binary exits.
package containers

import (
	"sync"
	"testing"
)

// Manager hands out shared container instances.
type Manager struct {
	pgOnce       sync.Once
	pg           *PostgresContainer
	redisOnce    sync.Once
	redis        *RedisContainer
	redpandaOnce sync.Once
	redpanda     *RedpandaContainer
}

var manager = &Manager{}

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	return manager
}

// GetPostgres returns the shared Postgres container, starting it on first use.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.pgOnce.Do(func() {
		pg, err := startPostgres()
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}
		m.pg = pg
	})
	if m.pg == nil {
		t.Fatal("postgres container failed to start in an earlier test")
	}
	return m.pg
}

// GetRedis returns the shared Redis container, starting it on first use.
func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	m.redisOnce.Do(func() {
		rc, err := startRedis()
		if err != nil {
			t.Fatalf("failed to start redis container: %v", err)
		}
		m.redis = rc
	})
	if m.redis == nil {
		t.Fatal("redis container failed to start in an earlier test")
	}
	return m.redis
}

// GetRedpanda returns the shared Redpanda container, starting it on first use.
func (m *Manager) GetRedpanda(t *testing.T) *RedpandaContainer {
	t.Helper()
	m.redpandaOnce.Do(func() {
		rp, err := startRedpanda()
		if err != nil {
			t.Fatalf("failed to start redpanda container: %v", err)
		}
		m.redpanda = rp
	})
	if m.redpanda == nil {
		t.Fatal("redpanda container failed to start in an earlier test")
	}
	return m.redpanda
}
