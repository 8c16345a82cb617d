package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"chain-registry/internal/config"
	"chain-registry/internal/domain"
	"chain-registry/internal/domain/entity"
	"chain-registry/internal/registry"

	"go.uber.org/zap"
)

// ErrNotInitialized is returned by operations that need an active chain before Initialize.
var ErrNotInitialized = errors.New("bridge is not initialized")

// Session holds the active chain and environment of one runtime connection.
type Session struct {
	registry *registry.Registry
	cfg      config.BridgeConfig
	logger   *zap.Logger

	mu     sync.RWMutex
	active entity.Chain
	ready  bool
	env    Env
}

func NewSession(reg *registry.Registry, cfg config.BridgeConfig, logger *zap.Logger) *Session {
	return &Session{
		registry: reg,
		cfg:      cfg,
		logger:   logger.Named("BridgeSession"),
		env:      ParseEnv(cfg.DefaultEnv),
	}
}

// Resolve finds the chain a request refers to. The composite key is tried
// first. A name that is itself a family tag must match that family, so only
// other names (display names, chain-type words, empty) fall back to a lookup
// within the chain type the name implies.
func (s *Session) Resolve(req ChainRequest) (entity.Chain, error) {
	if chain, ok := s.registry.Lookup(req.ChainID, req.ChainName); ok {
		return chain, nil
	}

	name := strings.ToLower(strings.TrimSpace(req.ChainName))
	var (
		chain entity.Chain
		ok    bool
	)
	switch {
	case name != "" && s.registry.HasTag(name):
	case name == entity.ChainTypeSolana.String():
		chain, ok = s.registry.LookupSolana(req.ChainID)
	default:
		chain, ok = s.registry.LookupEVM(req.ChainID)
	}
	if !ok {
		return entity.Chain{}, fmt.Errorf("%w: can't find chain for %s, chainId %d",
			domain.ErrChainNotFound, name, req.ChainID,
		)
	}
	return chain, nil
}

// ResolveAll resolves every reference in a JSON array; the first miss aborts.
func (s *Session) ResolveAll(payload string) ([]entity.Chain, error) {
	reqs, err := DecodeChainRequests(payload)
	if err != nil {
		return nil, err
	}
	chains := make([]entity.Chain, 0, len(reqs))
	for _, req := range reqs {
		chain, err := s.Resolve(req)
		if err != nil {
			return nil, err
		}
		chains = append(chains, chain)
	}
	return chains, nil
}

// Initialize sets the active chain and environment. Nothing changes on error.
func (s *Session) Initialize(payload string) error {
	req, err := DecodeInitRequest(payload)
	if err != nil {
		s.logger.Warn("Initialize rejected", zap.Error(err))
		return err
	}
	chain, err := s.Resolve(ChainRequest{ChainName: req.ChainName, ChainID: req.ChainID})
	if err != nil {
		s.logger.Warn("Initialize error", zap.Error(err))
		return fmt.Errorf("initialize: %w", err)
	}

	env := ParseEnv(req.Env)
	if req.Env == "" {
		env = ParseEnv(s.cfg.DefaultEnv)
	}

	s.mu.Lock()
	s.active = chain
	s.ready = true
	s.env = env
	s.mu.Unlock()

	s.logger.Info("Bridge initialized",
		zap.String("key", chain.Key()), zap.String("env", env.String()),
	)
	return nil
}

// SetChainInfo switches the active chain, reporting whether it was found.
func (s *Session) SetChainInfo(payload string) bool {
	req, err := DecodeChainRequest(payload)
	if err != nil {
		s.logger.Debug("SetChainInfo rejected", zap.Error(err))
		return false
	}
	chain, err := s.Resolve(req)
	if err != nil {
		s.logger.Debug("SetChainInfo miss", zap.Error(err))
		return false
	}

	s.mu.Lock()
	s.active = chain
	s.ready = true
	s.mu.Unlock()
	return true
}

// ChainInfo returns the active chain as a ChainInfoResponse JSON, or "" before Initialize.
func (s *Session) ChainInfo() string {
	chain, ok := s.Active()
	if !ok {
		return ""
	}
	data, err := json.Marshal(ChainInfoResponse{
		ChainName:   chain.Name,
		ChainID:     chain.ID,
		ChainIDName: chain.Network,
	})
	if err != nil {
		s.logger.Error("Failed to encode chain info", zap.Error(err))
		return ""
	}
	return string(data)
}

func (s *Session) Active() (entity.Chain, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return entity.Chain{}, false
	}
	return s.active.Clone(), true
}

func (s *Session) Env() Env {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.env
}

// relaySupported reports whether meta-transaction relaying can serve the chain.
func relaySupported(chain entity.Chain) bool {
	return chain.IsEVM() && !chain.IsTron()
}

// IsSupportChainInfo reports whether the referenced chain can use the relay path.
func (s *Session) IsSupportChainInfo(payload string) bool {
	req, err := DecodeChainRequest(payload)
	if err != nil {
		return false
	}
	chain, err := s.Resolve(req)
	if err != nil {
		return false
	}
	return relaySupported(chain)
}

// RelayApplicable reports whether transactions on the active chain go through the relay.
func (s *Session) RelayApplicable() bool {
	if !s.cfg.RelayEnabled {
		return false
	}
	chain, ok := s.Active()
	return ok && relaySupported(chain)
}

// SignMessage encodes a message for signing on the active chain.
func (s *Session) SignMessage(message string) (string, error) {
	chain, ok := s.Active()
	if !ok {
		return "", ErrNotInitialized
	}
	return SerializeMessage(chain, message), nil
}
