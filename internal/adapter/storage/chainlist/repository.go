package chainlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	dto "chain-registry/internal/adapter/storage/chainlist/dto"
	"chain-registry/internal/config"
	"chain-registry/internal/domain"
	"chain-registry/internal/domain/entity"
	domainRepo "chain-registry/internal/domain/repository"
	"chain-registry/internal/pkg/apperrors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainRepo.ChainRepository = (*Repository)(nil)

const defaultFetchTimeout = 15 * time.Second

// Repository supplies additional EVM descriptors from the chainid.network feed.
type Repository struct {
	client  *fasthttp.Client
	url     string
	timeout time.Duration
	logger  *zap.Logger
}

// NewRepository creates a new Chainlist repository instance.
func NewRepository(cfg config.ChainlistConfig, logger *zap.Logger) *Repository {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Repository{
		client:  &fasthttp.Client{},
		url:     cfg.URL,
		timeout: timeout,
		logger:  logger.Named("ChainlistStorage"),
	}
}

// GetAllChains fetches the feed and maps it to descriptors.
func (r *Repository) GetAllChains(ctx context.Context) ([]entity.Chain, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip")

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
			timeout = remaining
		}
	}

	r.logger.Debug("Fetching chains from Chainlist", zap.String("url", r.url), zap.Duration("timeout", timeout))

	if err := r.client.DoTimeout(req, resp, timeout); err != nil {
		r.logger.Error("Failed to execute request to Chainlist", zap.Error(err))
		return nil, fmt.Errorf("%w: %w: request to %s: %v",
			domain.ErrUpstreamSourceFailure, apperrors.ErrExternalServiceFailure, r.url, err,
		)
	}

	if resp.StatusCode() == fasthttp.StatusNotFound {
		r.logger.Warn("Chainlist source reported not found", zap.Int("statusCode", resp.StatusCode()))
		return nil, fmt.Errorf("%w: chainlist source reported not found (%s)", apperrors.ErrNotFound, r.url)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		r.logger.Error("Chainlist returned non-OK status",
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("body", resp.Body()[:min(512, len(resp.Body()))]),
		)
		return nil, fmt.Errorf("%w: chainlist returned status %d",
			domain.ErrUpstreamSourceFailure, resp.StatusCode(),
		)
	}

	body := resp.Body()
	if bytes.EqualFold(resp.Header.Peek(fasthttp.HeaderContentEncoding), []byte("gzip")) {
		unzipped, err := resp.BodyGunzip()
		if err != nil {
			r.logger.Error("Failed to gunzip Chainlist response body", zap.Error(err))
			return nil, fmt.Errorf("%w: failed to decompress chainlist response: %v",
				domain.ErrUpstreamSourceFailure, err,
			)
		}
		body = unzipped
	}

	var rawChains []dto.ChainRaw
	if err := json.Unmarshal(body, &rawChains); err != nil {
		r.logger.Error("Failed to unmarshal Chainlist response into raw DTOs",
			zap.Error(err), zap.ByteString("bodySample", body[:min(1024, len(body))]),
		)
		return nil, fmt.Errorf("%w: failed to parse chainlist response: %v",
			domain.ErrUpstreamSourceFailure, err,
		)
	}

	chains := toDomainChains(rawChains, r.logger)
	r.logger.Info("Fetched chains from Chainlist",
		zap.Int("rawCount", len(rawChains)), zap.Int("mappedCount", len(chains)),
	)
	return chains, nil
}
