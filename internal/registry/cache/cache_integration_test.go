//go:build integration

package cache_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/stinkypony1968-a11y/physician-dossier/internal/identity"
	"github.com/stinkypony1968-a11y/physician-dossier/internal/registry/cache"
	"github.com/stinkypony1968-a11y/physician-dossier/pkg/testutil/containers"
)

type countingRegistry struct {
	calls int
	hits  []identity.RegistryHit
}

func (c *countingRegistry) Search(ctx context.Context, first, last string, hint identity.Hint) ([]identity.RegistryHit, error) {
	c.calls++
	return c.hits, nil
}

type LookasideCacheSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	logger *slog.Logger
}

func TestLookasideCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(LookasideCacheSuite))
}

func (s *LookasideCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *LookasideCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *LookasideCacheSuite) TestMissThenHit() {
	inner := &countingRegistry{hits: []identity.RegistryHit{
		{Number: "1234567890", FirstName: "EVAN", LastName: "JOYCE", State: "ID", City: "BOISE"},
	}}
	lookaside := cache.New(inner, s.redis.Client, time.Minute, nil, s.logger)

	ctx := context.Background()
	hint := identity.Hint{State: "ID"}

	first, err := lookaside.Search(ctx, "Evan", "Joyce", hint)
	s.Require().NoError(err)
	s.Require().Len(first, 1)
	s.Equal(1, inner.calls)

	// Case differences share the entry.
	second, err := lookaside.Search(ctx, "evan", "JOYCE", hint)
	s.Require().NoError(err)
	s.Equal(first, second)
	s.Equal(1, inner.calls)
}

func (s *LookasideCacheSuite) TestDistinctHintsGetDistinctEntries() {
	inner := &countingRegistry{hits: []identity.RegistryHit{{Number: "1234567890"}}}
	lookaside := cache.New(inner, s.redis.Client, time.Minute, nil, s.logger)

	ctx := context.Background()

	_, err := lookaside.Search(ctx, "Evan", "Joyce", identity.Hint{State: "ID"})
	s.Require().NoError(err)
	_, err = lookaside.Search(ctx, "Evan", "Joyce", identity.Hint{State: "UT"})
	s.Require().NoError(err)

	s.Equal(2, inner.calls)
}

func (s *LookasideCacheSuite) TestEntriesExpire() {
	inner := &countingRegistry{hits: []identity.RegistryHit{{Number: "1234567890"}}}
	lookaside := cache.New(inner, s.redis.Client, 50*time.Millisecond, nil, s.logger)

	ctx := context.Background()

	_, err := lookaside.Search(ctx, "Evan", "Joyce", identity.Hint{})
	s.Require().NoError(err)
	s.Equal(1, inner.calls)

	time.Sleep(150 * time.Millisecond)

	_, err = lookaside.Search(ctx, "Evan", "Joyce", identity.Hint{})
	s.Require().NoError(err)
	s.Equal(2, inner.calls)
}

func (s *LookasideCacheSuite) TestCorruptEntryFallsThroughAndHeals() {
	ctx := context.Background()
	err := s.redis.Client.Set(ctx, "registry:search:evan:joyce::", "not json", time.Minute).Err()
	s.Require().NoError(err)

	inner := &countingRegistry{hits: []identity.RegistryHit{{Number: "1234567890"}}}
	lookaside := cache.New(inner, s.redis.Client, time.Minute, nil, s.logger)

	hits, err := lookaside.Search(ctx, "Evan", "Joyce", identity.Hint{})
	s.Require().NoError(err)
	s.Require().Len(hits, 1)
	s.Equal(1, inner.calls)

	// The live result overwrote the corrupt entry.
	_, err = lookaside.Search(ctx, "Evan", "Joyce", identity.Hint{})
	s.Require().NoError(err)
	s.Equal(1, inner.calls)
}

func (s *LookasideCacheSuite) TestNegativeResultsAreCached() {
	inner := &countingRegistry{}
	lookaside := cache.New(inner, s.redis.Client, time.Minute, nil, s.logger)

	ctx := context.Background()

	hits, err := lookaside.Search(ctx, "Nobody", "Known", identity.Hint{})
	s.Require().NoError(err)
	s.Empty(hits)
	s.Equal(1, inner.calls)

	_, err = lookaside.Search(ctx, "Nobody", "Known", identity.Hint{})
	s.Require().NoError(err)
	s.Equal(1, inner.calls)
}
