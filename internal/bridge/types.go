// Package bridge is the typed boundary between a game runtime and the chain
// registry. Payloads arrive as JSON strings; they are decoded once into
// typed requests, resolved against the registry and answered with JSON.
package bridge

import (
	"encoding/json"
	"fmt"
	"strings"

	"chain-registry/internal/pkg/apperrors"
)

// ChainRequest references a chain by family name and numeric id.
type ChainRequest struct {
	ChainName string `json:"chain_name"`
	ChainID   int64  `json:"chain_id"`
}

// InitRequest configures the active chain and the environment.
type InitRequest struct {
	ChainName string `json:"chain_name"`
	ChainID   int64  `json:"chain_id"`
	Env       string `json:"env"`
}

// ChainInfoResponse describes the active chain back to the runtime.
type ChainInfoResponse struct {
	ChainName   string `json:"chain_name"`
	ChainID     int64  `json:"chain_id"`
	ChainIDName string `json:"chain_id_name"`
}

// Env selects the backend environment.
type Env string

const (
	EnvDev        Env = "dev"
	EnvStaging    Env = "staging"
	EnvProduction Env = "production"
)

// ParseEnv is case-insensitive; unknown or empty values select production.
func ParseEnv(s string) Env {
	switch Env(strings.ToLower(strings.TrimSpace(s))) {
	case EnvDev:
		return EnvDev
	case EnvStaging:
		return EnvStaging
	default:
		return EnvProduction
	}
}

func (e Env) String() string {
	return string(e)
}

func decode(payload string, v interface{}) error {
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("%w: malformed payload: %v", apperrors.ErrInvalidInput, err)
	}
	return nil
}

func checkChainID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: chain_id must be positive, got %d", apperrors.ErrInvalidInput, id)
	}
	return nil
}

// DecodeChainRequest parses a {chain_name, chain_id} payload.
func DecodeChainRequest(payload string) (ChainRequest, error) {
	var req ChainRequest
	if err := decode(payload, &req); err != nil {
		return ChainRequest{}, err
	}
	if err := checkChainID(req.ChainID); err != nil {
		return ChainRequest{}, err
	}
	return req, nil
}

// DecodeChainRequests parses a JSON array of chain references.
func DecodeChainRequests(payload string) ([]ChainRequest, error) {
	var reqs []ChainRequest
	if err := decode(payload, &reqs); err != nil {
		return nil, err
	}
	for _, req := range reqs {
		if err := checkChainID(req.ChainID); err != nil {
			return nil, err
		}
	}
	return reqs, nil
}

// DecodeInitRequest parses a {chain_name, chain_id, env} payload.
func DecodeInitRequest(payload string) (InitRequest, error) {
	var req InitRequest
	if err := decode(payload, &req); err != nil {
		return InitRequest{}, err
	}
	if err := checkChainID(req.ChainID); err != nil {
		return InitRequest{}, err
	}
	return req, nil
}
