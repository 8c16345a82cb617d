package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"chain-registry/internal/application/port"
	"chain-registry/internal/config"
	"chain-registry/internal/domain"
	"chain-registry/internal/domain/entity"
	"chain-registry/internal/metrics"
	"chain-registry/internal/pkg/apperrors"
	"chain-registry/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCache struct {
	mu      sync.Mutex
	details map[string]entity.RPCDetail
}

func newFakeCache() *fakeCache {
	return &fakeCache{details: make(map[string]entity.RPCDetail)}
}

func (f *fakeCache) GetRPCDetail(_ context.Context, chainKey string) (entity.RPCDetail, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.details[chainKey]
	return d, ok, nil
}

func (f *fakeCache) SetRPCDetail(_ context.Context, chainKey string, detail entity.RPCDetail, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.details[chainKey] = detail
	return nil
}

type fakeChecker struct {
	mu    sync.Mutex
	calls map[entity.RPCURL]entity.ChainType
	fail  map[entity.RPCURL]error
}

func newFakeChecker() *fakeChecker {
	return &fakeChecker{calls: make(map[entity.RPCURL]entity.ChainType), fail: make(map[entity.RPCURL]error)}
}

func (f *fakeChecker) CheckRPC(_ context.Context, rpcURL entity.RPCURL, chainType entity.ChainType) (bool, time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[rpcURL] = chainType
	if err, ok := f.fail[rpcURL]; ok {
		return false, 0, err
	}
	return true, 25 * time.Millisecond, nil
}

func (f *fakeChecker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testChains() []entity.Chain {
	return []entity.Chain{
		{ID: 1, Tag: "ethereum", Name: "Ethereum", ChainType: entity.ChainTypeEVM, Network: "Mainnet",
			RPCURL: "https://eth.example", Features: []entity.Feature{{Name: entity.FeatureEIP1559}}},
		{ID: 5, Tag: "ethereum", Name: "Ethereum", ChainType: entity.ChainTypeEVM, Network: "Goerli",
			RPCURL: "https://goerli.example"},
		{ID: 101, Tag: "solana", Name: "Solana", ChainType: entity.ChainTypeSolana, Network: "Mainnet",
			RPCURL: "https://sol.example"},
		{ID: 728126428, Tag: "tron", Name: "Tron", ChainType: entity.ChainTypeEVM, Network: "Mainnet"},
	}
}

func newTestService(t *testing.T, ctx context.Context, cfg config.Config) (*Service, *fakeCache, *fakeChecker) {
	t.Helper()
	reg, err := registry.New(testChains())
	require.NoError(t, err)
	cache := newFakeCache()
	checker := newFakeChecker()
	return NewChainService(ctx, reg, cache, checker, metrics.NewCollector(""), zap.NewNop(), cfg), cache, checker
}

func TestService_Lookups(t *testing.T) {
	svc, _, _ := newTestService(t, context.Background(), config.Config{})
	ctx := context.Background()

	chain, err := svc.GetChain(ctx, 1, "Ethereum")
	require.NoError(t, err)
	assert.Equal(t, "ethereum-1", chain.Key())

	_, err = svc.GetChain(ctx, 101, "ethereum")
	assert.ErrorIs(t, err, domain.ErrChainNotFound)

	chain, err = svc.GetEVMChain(ctx, 728126428)
	require.NoError(t, err)
	assert.True(t, chain.IsTron())

	_, err = svc.GetEVMChain(ctx, 101)
	assert.ErrorIs(t, err, domain.ErrChainNotFound)

	chain, err = svc.GetSolanaChain(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, "solana", chain.Tag)

	_, err = svc.GetSolanaChain(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrChainNotFound)
}

func TestService_ListChains(t *testing.T) {
	svc, _, _ := newTestService(t, context.Background(), config.Config{})
	yes, no := true, false

	tests := []struct {
		name   string
		filter port.ChainFilter
		want   []string
	}{
		{"all", port.ChainFilter{}, []string{"ethereum-1", "ethereum-5", "solana-101", "tron-728126428"}},
		{"solana", port.ChainFilter{ChainType: entity.ChainTypeSolana}, []string{"solana-101"}},
		{"mainnet evm", port.ChainFilter{ChainType: entity.ChainTypeEVM, Mainnet: &yes}, []string{"ethereum-1", "tron-728126428"}},
		{"testnets", port.ChainFilter{Mainnet: &no}, []string{"ethereum-5"}},
		{"fee market", port.ChainFilter{FeeMarket: &yes}, []string{"ethereum-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chains, err := svc.ListChains(context.Background(), tt.filter)
			require.NoError(t, err)
			keys := make([]string, 0, len(chains))
			for _, c := range chains {
				keys = append(keys, c.Key())
			}
			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestService_CheckChainRPC(t *testing.T) {
	svc, cache, checker := newTestService(t, context.Background(), config.Config{
		Checker: config.CheckerConfig{CheckTimeout: time.Second, CacheTTL: time.Minute},
	})
	ctx := context.Background()

	detail, err := svc.CheckChainRPC(ctx, 101, "solana")
	require.NoError(t, err)
	assert.True(t, detail.IsWorking)
	assert.Equal(t, "solana-101", detail.ChainKey)
	assert.Equal(t, entity.ProtocolHTTPS, detail.Protocol)
	require.NotNil(t, detail.LatencyMs)
	assert.Equal(t, int64(25), *detail.LatencyMs)
	assert.Equal(t, entity.ChainTypeSolana, checker.calls["https://sol.example"])

	_, found, _ := cache.GetRPCDetail(ctx, "solana-101")
	assert.True(t, found)

	// second call is served from cache
	checker.fail["https://sol.example"] = errors.New("must not be called")
	detail, err = svc.CheckChainRPC(ctx, 101, "solana")
	require.NoError(t, err)
	assert.True(t, detail.IsWorking)
}

func TestService_CheckChainRPC_Failures(t *testing.T) {
	svc, _, checker := newTestService(t, context.Background(), config.Config{})
	ctx := context.Background()

	_, err := svc.CheckChainRPC(ctx, 999, "ethereum")
	assert.ErrorIs(t, err, domain.ErrChainNotFound)

	_, err = svc.CheckChainRPC(ctx, 728126428, "tron")
	assert.ErrorIs(t, err, domain.ErrNoRPCsAvailable)

	checker.fail["https://goerli.example"] = apperrors.ErrTimeout
	detail, err := svc.CheckChainRPC(ctx, 5, "ethereum")
	require.NoError(t, err)
	assert.False(t, detail.IsWorking)
	assert.Nil(t, detail.LatencyMs)
	assert.Contains(t, detail.Error, "timed out")
}

func TestService_Sweep(t *testing.T) {
	svc, cache, checker := newTestService(t, context.Background(), config.Config{
		Checker: config.CheckerConfig{MaxWorkers: 2},
	})
	checker.fail["https://goerli.example"] = apperrors.ErrExternalServiceFailure

	svc.runSweep()

	assert.Equal(t, 3, checker.callCount())
	assert.Len(t, cache.details, 3)
	assert.True(t, cache.details["ethereum-1"].IsWorking)
	assert.False(t, cache.details["ethereum-5"].IsWorking)
	assert.False(t, svc.isChecking.Load())
}

func TestService_StartBackgroundChecker(t *testing.T) {
	t.Run("disabled without schedule", func(t *testing.T) {
		svc, _, checker := newTestService(t, context.Background(), config.Config{})
		svc.StartBackgroundChecker()
		assert.Equal(t, 0, checker.callCount())
	})

	t.Run("runs on startup and stops with context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		svc, _, checker := newTestService(t, ctx, config.Config{
			Checker: config.CheckerConfig{CheckInterval: time.Hour, RunOnStartup: true},
		})

		done := make(chan struct{})
		go func() {
			svc.StartBackgroundChecker()
			close(done)
		}()

		assert.Eventually(t, func() bool { return checker.callCount() == 3 }, 2*time.Second, 10*time.Millisecond)
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("background checker did not stop")
		}
	})

	t.Run("invalid schedule", func(t *testing.T) {
		svc, _, _ := newTestService(t, context.Background(), config.Config{
			Checker: config.CheckerConfig{Schedule: "not a cron"},
		})
		svc.StartBackgroundChecker()
	})
}
