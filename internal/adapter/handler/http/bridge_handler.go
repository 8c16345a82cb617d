package http

import (
	"errors"
	"fmt"

	"chain-registry/internal/bridge"
	"chain-registry/internal/domain"
	"chain-registry/internal/pkg/apperrors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// BridgeHandler exposes one bridge session to a game runtime over HTTP.
// Request bodies are the runtime's JSON payloads, passed through unchanged.
type BridgeHandler struct {
	session *bridge.Session
	logger  *zap.Logger
}

func NewBridgeHandler(session *bridge.Session, logger *zap.Logger) *BridgeHandler {
	return &BridgeHandler{
		session: session,
		logger:  logger.Named("BridgeHandler"),
	}
}

// SessionResponse describes the active chain, environment and relay state.
type SessionResponse struct {
	Chain bridge.ChainInfoResponse `json:"chain"`
	Env   string                   `json:"env"`
	Relay bool                     `json:"relay"`
}

// SendPlanResponse is the JSON form of bridge.SendPlan.
type SendPlanResponse struct {
	ChainKey     string         `json:"chain_key"`
	Route        bridge.Route   `json:"route"`
	TxType       *uint8         `json:"tx_type,omitempty"`
	Transactions []string       `json:"transactions"`
	FeeMode      bridge.FeeMode `json:"fee_mode"`
}

// Initialize handles POST /bridge/initialize.
func (h *BridgeHandler) Initialize(ctx *fasthttp.RequestCtx) {
	if err := h.session.Initialize(string(ctx.PostBody())); err != nil {
		writeError(ctx, h.logger, err)
		return
	}
	h.writeSession(ctx)
}

// GetChainInfo handles GET /bridge/chain-info.
func (h *BridgeHandler) GetChainInfo(ctx *fasthttp.RequestCtx) {
	info := h.session.ChainInfo()
	if info == "" {
		writeError(ctx, h.logger, bridge.ErrNotInitialized)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBodyString(info)
}

// SetChainInfo handles PUT /bridge/chain-info.
func (h *BridgeHandler) SetChainInfo(ctx *fasthttp.RequestCtx) {
	payload := string(ctx.PostBody())
	req, err := bridge.DecodeChainRequest(payload)
	if err != nil {
		writeError(ctx, h.logger, err)
		return
	}
	if !h.session.SetChainInfo(payload) {
		writeError(ctx, h.logger, fmt.Errorf("%w: %s, chainId %d", domain.ErrChainNotFound, req.ChainName, req.ChainID))
		return
	}
	h.writeSession(ctx)
}

// IsSupportChainInfo handles POST /bridge/chain-info/support.
func (h *BridgeHandler) IsSupportChainInfo(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, h.logger, map[string]bool{
		"supported": h.session.IsSupportChainInfo(string(ctx.PostBody())),
	})
}

// SignMessage handles POST /bridge/sign-message. The body is the raw message.
func (h *BridgeHandler) SignMessage(ctx *fasthttp.RequestCtx) {
	message, err := h.session.SignMessage(string(ctx.PostBody()))
	if err != nil {
		writeError(ctx, h.logger, err)
		return
	}
	writeJSON(ctx, h.logger, map[string]string{"message": message})
}

// NormalizeAddress handles GET /bridge/addresses/{address}.
func (h *BridgeHandler) NormalizeAddress(ctx *fasthttp.RequestCtx) {
	chain, ok := h.session.Active()
	if !ok {
		writeError(ctx, h.logger, bridge.ErrNotInitialized)
		return
	}
	raw, _ := ctx.UserValue("address").(string)
	address, err := bridge.NormalizeAddress(chain, raw)
	if err != nil {
		writeError(ctx, h.logger, err)
		return
	}
	writeJSON(ctx, h.logger, map[string]string{
		"address": address,
		"scheme":  string(bridge.SchemeFor(chain)),
	})
}

// RouteTransaction handles POST /bridge/transactions.
func (h *BridgeHandler) RouteTransaction(ctx *fasthttp.RequestCtx) {
	plan, err := h.session.RouteTransaction(string(ctx.PostBody()))
	if err != nil {
		writeError(ctx, h.logger, err)
		return
	}

	resp := SendPlanResponse{
		ChainKey:     plan.Chain.Key(),
		Route:        plan.Route,
		Transactions: plan.Transactions,
		FeeMode:      plan.FeeMode,
	}
	txType, err := bridge.TransactionType(plan.Chain)
	switch {
	case err == nil:
		resp.TxType = &txType
	case !errors.Is(err, domain.ErrUnsupportedChainType):
		writeError(ctx, h.logger, err)
		return
	}
	writeJSON(ctx, h.logger, resp)
}

// NodeURL handles GET /bridge/node-url?projectId=..&projectKey=..
func (h *BridgeHandler) NodeURL(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	projectID, projectKey := string(args.Peek("projectId")), string(args.Peek("projectKey"))
	if projectID == "" || projectKey == "" {
		writeError(ctx, h.logger, fmt.Errorf("%w: projectId and projectKey are required", apperrors.ErrInvalidInput))
		return
	}
	nodeURL, err := h.session.NodeURL(projectID, projectKey)
	if err != nil {
		writeError(ctx, h.logger, err)
		return
	}
	writeJSON(ctx, h.logger, map[string]string{"url": nodeURL})
}

func (h *BridgeHandler) writeSession(ctx *fasthttp.RequestCtx) {
	chain, ok := h.session.Active()
	if !ok {
		writeError(ctx, h.logger, bridge.ErrNotInitialized)
		return
	}
	writeJSON(ctx, h.logger, SessionResponse{
		Chain: bridge.ChainInfoResponse{
			ChainName:   chain.Name,
			ChainID:     chain.ID,
			ChainIDName: chain.Network,
		},
		Env:   h.session.Env().String(),
		Relay: h.session.RelayApplicable(),
	})
}
