package tariff_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"

	"palika/internal/domain"
	"palika/internal/port"
	"palika/internal/tariff"
	"palika/mocks"
)

var testKey = port.TariffKey{
	ServiceType: domain.ServiceElectricity,
	Category:    domain.CategoryDomestic,
	ZoneCode:    "Z1",
}

var testAt = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func plan(name string, from time.Time) domain.TariffPlan {
	return domain.TariffPlan{
		ID:            uuid.New(),
		Name:          name,
		ServiceType:   testKey.ServiceType,
		Category:      testKey.Category,
		ZoneCode:      testKey.ZoneCode,
		BaseRate:      decimal.NewFromInt(5),
		EffectiveFrom: from,
	}
}

func TestResolve_RepoHit(t *testing.T) {
	repo := new(mocks.MockTariffRepo)
	p := plan("domestic-2025", testAt.AddDate(0, -6, 0))
	repo.On("FindApplicable", mock.Anything, testKey, testAt).
		Return([]domain.TariffPlan{p}, nil)

	r := tariff.NewResolver(repo, nil, zap.NewNop())
	got, err := r.Resolve(context.Background(), testKey, testAt)

	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	repo.AssertExpectations(t)
}

func TestResolve_NoApplicablePlan(t *testing.T) {
	repo := new(mocks.MockTariffRepo)
	repo.On("FindApplicable", mock.Anything, testKey, testAt).
		Return([]domain.TariffPlan{}, nil)

	r := tariff.NewResolver(repo, nil, zap.NewNop())
	_, err := r.Resolve(context.Background(), testKey, testAt)

	assert.ErrorIs(t, err, domain.ErrNoApplicableTariff)
}

func TestResolve_MostRecentWinsOnOverlap(t *testing.T) {
	repo := new(mocks.MockTariffRepo)
	newer := plan("revised", testAt.AddDate(0, -1, 0))
	older := plan("original", testAt.AddDate(0, -12, 0))
	// Repository orders by effective_from descending.
	repo.On("FindApplicable", mock.Anything, testKey, testAt).
		Return([]domain.TariffPlan{newer, older}, nil)

	r := tariff.NewResolver(repo, nil, zap.NewNop())
	got, err := r.Resolve(context.Background(), testKey, testAt)

	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)
}

func TestResolve_CacheHitSkipsRepo(t *testing.T) {
	repo := new(mocks.MockTariffRepo)
	cache := new(mocks.MockTariffCache)
	p := plan("cached", testAt.AddDate(0, -6, 0))
	cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(&p, nil)

	r := tariff.NewResolver(repo, cache, zap.NewNop())
	got, err := r.Resolve(context.Background(), testKey, testAt)

	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	repo.AssertNotCalled(t, "FindApplicable", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_CacheMissFallsThrough(t *testing.T) {
	repo := new(mocks.MockTariffRepo)
	cache := new(mocks.MockTariffCache)
	p := plan("from-repo", testAt.AddDate(0, -6, 0))
	cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, nil)
	cache.On("Set", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("*domain.TariffPlan")).Return(nil)
	repo.On("FindApplicable", mock.Anything, testKey, testAt).
		Return([]domain.TariffPlan{p}, nil)

	r := tariff.NewResolver(repo, cache, zap.NewNop())
	got, err := r.Resolve(context.Background(), testKey, testAt)

	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	cache.AssertCalled(t, "Set", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("*domain.TariffPlan"))
}

func TestResolve_CacheErrorFallsThrough(t *testing.T) {
	repo := new(mocks.MockTariffRepo)
	cache := new(mocks.MockTariffCache)
	p := plan("from-repo", testAt.AddDate(0, -6, 0))
	cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, errors.New("redis down"))
	cache.On("Set", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("*domain.TariffPlan")).Return(errors.New("redis down"))
	repo.On("FindApplicable", mock.Anything, testKey, testAt).
		Return([]domain.TariffPlan{p}, nil)

	r := tariff.NewResolver(repo, cache, zap.NewNop())
	got, err := r.Resolve(context.Background(), testKey, testAt)

	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestResolve_StaleCacheEntryIgnored(t *testing.T) {
	repo := new(mocks.MockTariffRepo)
	cache := new(mocks.MockTariffCache)
	stale := plan("expired", testAt.AddDate(-2, 0, 0))
	until := testAt.AddDate(-1, 0, 0)
	stale.EffectiveUntil = &until
	fresh := plan("current", testAt.AddDate(0, -1, 0))
	cache.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(&stale, nil)
	cache.On("Set", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("*domain.TariffPlan")).Return(nil)
	repo.On("FindApplicable", mock.Anything, testKey, testAt).
		Return([]domain.TariffPlan{fresh}, nil)

	r := tariff.NewResolver(repo, cache, zap.NewNop())
	got, err := r.Resolve(context.Background(), testKey, testAt)

	require.NoError(t, err)
	assert.Equal(t, fresh.ID, got.ID)
}
