package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"chain-registry/internal/application/port"
	"chain-registry/internal/config"
	"chain-registry/internal/domain"
	"chain-registry/internal/domain/entity"
	domainRepo "chain-registry/internal/domain/repository"
	domainService "chain-registry/internal/domain/service"
	"chain-registry/internal/metrics"
	"chain-registry/internal/registry"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Compile-time check to ensure Service implements ChainService
var _ port.ChainService = (*Service)(nil)

// Lookup kinds reported to metrics.
const (
	lookupByKey    = "key"
	lookupEVM      = "evm"
	lookupSolana   = "solana"
	defaultWorkers = 10
)

// Service implements the port.ChainService interface on top of an immutable registry.
type Service struct {
	registry   *registry.Registry
	cacheRepo  domainRepo.CacheRepository
	rpcChecker domainService.RPCChecker
	metrics    *metrics.Collector
	logger     *zap.Logger
	cfg        config.Config
	rootCtx    context.Context
	isChecking *atomic.Bool
}

// NewChainService creates a new instance of the chain service.
func NewChainService(
	rootCtx context.Context,
	reg *registry.Registry,
	cacheRepo domainRepo.CacheRepository,
	rpcChecker domainService.RPCChecker,
	collector *metrics.Collector,
	logger *zap.Logger,
	cfg config.Config,
) *Service {
	collector.RecordCatalog(reg.All())
	return &Service{
		registry:   reg,
		cacheRepo:  cacheRepo,
		rpcChecker: rpcChecker,
		metrics:    collector,
		logger:     logger.Named("ChainService"),
		cfg:        cfg,
		rootCtx:    rootCtx,
		isChecking: new(atomic.Bool),
	}
}

// GetChain finds a chain by id and family tag.
func (s *Service) GetChain(_ context.Context, chainID int64, tag string) (entity.Chain, error) {
	chain, ok := s.registry.Lookup(chainID, tag)
	s.metrics.RecordLookup(lookupByKey, ok)
	if !ok {
		s.logger.Debug("Chain not found", zap.String("key", entity.ChainKey(tag, chainID)))
		return entity.Chain{}, fmt.Errorf("%w: %s", domain.ErrChainNotFound, entity.ChainKey(tag, chainID))
	}
	return chain, nil
}

// GetEVMChain finds a chain by id within the EVM partition.
func (s *Service) GetEVMChain(_ context.Context, chainID int64) (entity.Chain, error) {
	chain, ok := s.registry.LookupEVM(chainID)
	s.metrics.RecordLookup(lookupEVM, ok)
	if !ok {
		return entity.Chain{}, fmt.Errorf("%w: evm chain %d", domain.ErrChainNotFound, chainID)
	}
	return chain, nil
}

// GetSolanaChain finds a chain by id within the Solana partition.
func (s *Service) GetSolanaChain(_ context.Context, chainID int64) (entity.Chain, error) {
	chain, ok := s.registry.LookupSolana(chainID)
	s.metrics.RecordLookup(lookupSolana, ok)
	if !ok {
		return entity.Chain{}, fmt.Errorf("%w: solana chain %d", domain.ErrChainNotFound, chainID)
	}
	return chain, nil
}

// ListChains returns the catalog in insertion order, filtered.
func (s *Service) ListChains(_ context.Context, filter port.ChainFilter) ([]entity.Chain, error) {
	return s.registry.Filter(filter.Matches), nil
}

// CheckChainRPC returns the cached probe result for the chain's RPC, probing and caching on a miss.
// A chain without an RPC yields domain.ErrNoRPCsAvailable.
func (s *Service) CheckChainRPC(ctx context.Context, chainID int64, tag string) (entity.RPCDetail, error) {
	chain, err := s.GetChain(ctx, chainID, tag)
	if err != nil {
		return entity.RPCDetail{}, err
	}
	if chain.RPCURL == "" {
		return entity.RPCDetail{}, fmt.Errorf("%w: %s", domain.ErrNoRPCsAvailable, chain.Key())
	}

	key := chain.Key()
	detail, found, cacheErr := s.cacheRepo.GetRPCDetail(ctx, key)
	if cacheErr != nil {
		s.logger.Warn("Cache error when getting RPC detail", zap.String("key", key), zap.Error(cacheErr))
	}
	if found {
		s.logger.Debug("Cache hit for RPC detail", zap.String("key", key))
		return detail, nil
	}

	detail = s.probe(ctx, chain)
	if setErr := s.cacheRepo.SetRPCDetail(ctx, key, detail, s.cfg.Checker.GetCacheTTL()); setErr != nil {
		s.logger.Error("Failed to cache RPC detail", zap.String("key", key), zap.Error(setErr))
	}
	return detail, nil
}

// probe checks a single chain's RPC under the configured timeout.
func (s *Service) probe(ctx context.Context, chain entity.Chain) entity.RPCDetail {
	detail := entity.RPCDetail{
		ChainKey: chain.Key(),
		URL:      chain.RPCURL,
		Protocol: chain.RPCURL.Protocol(),
	}

	checkCtx := ctx
	if timeout := s.cfg.Checker.GetTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	isWorking, latency, err := s.rpcChecker.CheckRPC(checkCtx, chain.RPCURL, chain.ChainType)
	if err != nil {
		s.logger.Debug("RPC check failed",
			zap.String("key", detail.ChainKey), zap.String("rpc", chain.RPCURL.String()), zap.Error(err),
		)
		detail.Error = err.Error()
		s.metrics.RecordProbe(chain.ChainType, false, latency)
		return detail
	}

	detail.IsWorking = isWorking
	if isWorking {
		latencyMs := latency.Milliseconds()
		detail.LatencyMs = &latencyMs
	}
	s.metrics.RecordProbe(chain.ChainType, isWorking, latency)
	return detail
}

// sweep probes every chain with an RPC through a bounded worker pool and caches the results.
func (s *Service) sweep(ctx context.Context) {
	chains := s.registry.Filter(func(c entity.Chain) bool { return c.RPCURL != "" })
	if len(chains) == 0 {
		s.logger.Warn("Sweep found no chains with an RPC")
		return
	}
	s.logger.Info("Starting RPC sweep", zap.Int("chainCount", len(chains)))

	numWorkers := s.cfg.Checker.MaxWorkers
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if numWorkers > len(chains) {
		numWorkers = len(chains)
	}

	jobs := make(chan entity.Chain, len(chains))
	var working atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for chain := range jobs {
				if ctx.Err() != nil {
					s.logger.Info("Context cancelled, sweep worker shutting down", zap.Int("workerID", workerID))
					return
				}
				detail := s.probe(ctx, chain)
				if detail.IsWorking {
					working.Add(1)
				}
				if err := s.cacheRepo.SetRPCDetail(ctx, detail.ChainKey, detail, s.cfg.Checker.GetCacheTTL()); err != nil {
					s.logger.Warn("Failed to cache RPC detail during sweep",
						zap.String("key", detail.ChainKey), zap.Error(err),
					)
				}
			}
		}(w)
	}

	for _, chain := range chains {
		jobs <- chain
	}
	close(jobs)
	wg.Wait()

	if ctx.Err() != nil {
		s.logger.Warn("RPC sweep interrupted", zap.Error(ctx.Err()))
		return
	}
	s.metrics.RecordSweep()
	s.logger.Info("RPC sweep finished",
		zap.Int("chainCount", len(chains)), zap.Int64("workingCount", working.Load()),
	)
}

// runSweep starts a sweep unless one is already in progress.
func (s *Service) runSweep() {
	if !s.isChecking.CompareAndSwap(false, true) {
		s.logger.Debug("Sweep already in progress, skipping")
		return
	}
	defer s.isChecking.Store(false)
	s.sweep(s.rootCtx)
}

// StartBackgroundChecker schedules the RPC sweep and blocks until the root context is done.
// An empty schedule disables it.
func (s *Service) StartBackgroundChecker() {
	schedule := s.cfg.Checker.GetSchedule()
	if schedule == "" {
		s.logger.Info("Background checker disabled (no schedule)")
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, s.runSweep); err != nil {
		s.logger.Error("Invalid background checker schedule", zap.String("schedule", schedule), zap.Error(err))
		return
	}

	s.logger.Info("Starting background checker", zap.String("schedule", schedule))
	c.Start()

	if s.cfg.Checker.RunOnStartup {
		go s.runSweep()
	}

	<-s.rootCtx.Done()
	s.logger.Info("Background checker stopping due to context cancellation.")
	<-c.Stop().Done()
}
