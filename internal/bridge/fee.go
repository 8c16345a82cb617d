package bridge

import (
	"encoding/json"
	"fmt"

	"chain-registry/internal/domain/entity"
	"chain-registry/internal/pkg/apperrors"
)

// FeeOption selects who pays for gas.
type FeeOption string

const (
	FeeNative  FeeOption = "native"
	FeeGasless FeeOption = "gasless"
	FeeToken   FeeOption = "token"
)

// FeeMode is the fee_mode object of a send payload. Quotes are passed through untouched.
type FeeMode struct {
	Option                FeeOption       `json:"option"`
	TokenPaymasterAddress string          `json:"token_paymaster_address,omitempty"`
	FeeQuote              json.RawMessage `json:"fee_quote,omitempty"`
	WholeFeeQuote         json.RawMessage `json:"whole_fee_quote,omitempty"`
}

// SendRequest carries one transaction or a batch plus the fee mode.
type SendRequest struct {
	Transaction  string   `json:"transaction,omitempty"`
	Transactions []string `json:"transactions,omitempty"`
	FeeMode      FeeMode  `json:"fee_mode"`
}

// Route is where a transaction is submitted.
type Route string

const (
	RouteRelay  Route = "relay"
	RouteDirect Route = "direct"
)

// SendPlan is the resolved submission of a SendRequest.
type SendPlan struct {
	Chain        entity.Chain
	Route        Route
	Transactions []string
	FeeMode      FeeMode
}

// DecodeSendRequest parses a send payload. A missing option means native.
func DecodeSendRequest(payload string) (SendRequest, error) {
	var req SendRequest
	if err := decode(payload, &req); err != nil {
		return SendRequest{}, err
	}
	switch req.FeeMode.Option {
	case "":
		req.FeeMode.Option = FeeNative
	case FeeNative, FeeGasless, FeeToken:
	default:
		return SendRequest{}, fmt.Errorf("%w: unknown fee option %q", apperrors.ErrInvalidInput, req.FeeMode.Option)
	}
	if req.Transaction == "" && len(req.Transactions) == 0 {
		return SendRequest{}, fmt.Errorf("%w: no transaction to send", apperrors.ErrInvalidInput)
	}
	return req, nil
}

// RouteTransaction decides how a send payload is submitted on the active
// chain. Batches and paid-by-token sends need the relay.
func (s *Session) RouteTransaction(payload string) (SendPlan, error) {
	chain, ok := s.Active()
	if !ok {
		return SendPlan{}, ErrNotInitialized
	}
	req, err := DecodeSendRequest(payload)
	if err != nil {
		return SendPlan{}, err
	}

	plan := SendPlan{Chain: chain, Route: RouteDirect, FeeMode: req.FeeMode}
	if s.cfg.RelayEnabled && relaySupported(chain) {
		plan.Route = RouteRelay
	}

	if req.Transaction != "" {
		plan.Transactions = append(plan.Transactions, req.Transaction)
	}
	plan.Transactions = append(plan.Transactions, req.Transactions...)

	if plan.Route != RouteRelay {
		if len(req.Transactions) > 0 {
			return SendPlan{}, fmt.Errorf("%w: batch send requires the relay on %s", apperrors.ErrInvalidInput, chain.Key())
		}
		if req.FeeMode.Option == FeeToken {
			return SendPlan{}, fmt.Errorf("%w: token fee mode requires the relay on %s", apperrors.ErrInvalidInput, chain.Key())
		}
	}
	if req.FeeMode.Option == FeeToken {
		if err := ValidateAddress(chain, req.FeeMode.TokenPaymasterAddress); err != nil {
			return SendPlan{}, fmt.Errorf("token_paymaster_address: %w", err)
		}
	}
	return plan, nil
}
