package bridge

import (
	"fmt"
	"net/url"
	"strings"

	"chain-registry/internal/domain"
	"chain-registry/internal/domain/entity"
	"chain-registry/internal/pkg/apperrors"
)

// NodeURL builds the project-scoped RPC proxy URL for an EVM chain.
func NodeURL(baseURL string, chain entity.Chain, projectID, projectKey string) (string, error) {
	if !chain.IsEVM() {
		return "", fmt.Errorf("%w: no node proxy for %s", domain.ErrUnsupportedChainType, chain.Key())
	}
	if baseURL == "" || projectID == "" || projectKey == "" {
		return "", fmt.Errorf("%w: node base url, project id and project key are required", apperrors.ErrInvalidInput)
	}
	return fmt.Sprintf("%s/evm-chain?chainId=%d&projectUuid=%s&projectKey=%s",
		strings.TrimRight(baseURL, "/"), chain.ID, url.QueryEscape(projectID), url.QueryEscape(projectKey),
	), nil
}

// NodeURL builds the proxy URL for the active chain using the configured base.
func (s *Session) NodeURL(projectID, projectKey string) (string, error) {
	chain, ok := s.Active()
	if !ok {
		return "", ErrNotInitialized
	}
	return NodeURL(s.cfg.NodeBaseURL, chain, projectID, projectKey)
}
