package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"chain-registry/internal/application/port"
	"chain-registry/internal/bridge"
	"chain-registry/internal/domain"
	"chain-registry/internal/domain/entity"
	"chain-registry/internal/pkg/apperrors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type ChainHandler struct {
	service port.ChainService
	logger  *zap.Logger
}

func NewChainHandler(service port.ChainService, logger *zap.Logger) *ChainHandler {
	return &ChainHandler{
		service: service,
		logger:  logger.Named("ChainHandler"),
	}
}

// ListChains handles GET /chains with optional type, mainnet and eip1559 filters.
func (h *ChainHandler) ListChains(ctx *fasthttp.RequestCtx) {
	filter, err := parseFilter(ctx.QueryArgs())
	if err != nil {
		writeError(ctx, h.logger, err)
		return
	}

	chains, err := h.service.ListChains(ctx, filter)
	if err != nil {
		writeError(ctx, h.logger, err)
		return
	}
	writeJSON(ctx, h.logger, toChainResponses(chains))
}

// GetChain handles GET /chains/{tag}/{chainId}.
func (h *ChainHandler) GetChain(ctx *fasthttp.RequestCtx) {
	chainID, err := chainIDParam(ctx)
	if err != nil {
		writeError(ctx, h.logger, err)
		return
	}
	tag, _ := ctx.UserValue("tag").(string)

	chain, err := h.service.GetChain(ctx, chainID, tag)
	if err != nil {
		writeError(ctx, h.logger, err)
		return
	}
	writeJSON(ctx, h.logger, toChainResponse(chain))
}

// GetEVMChain handles GET /chains/evm/{chainId}.
func (h *ChainHandler) GetEVMChain(ctx *fasthttp.RequestCtx) {
	chainID, err := chainIDParam(ctx)
	if err != nil {
		writeError(ctx, h.logger, err)
		return
	}

	chain, err := h.service.GetEVMChain(ctx, chainID)
	if err != nil {
		writeError(ctx, h.logger, err)
		return
	}
	writeJSON(ctx, h.logger, toChainResponse(chain))
}

// GetSolanaChain handles GET /chains/solana/{chainId}.
func (h *ChainHandler) GetSolanaChain(ctx *fasthttp.RequestCtx) {
	chainID, err := chainIDParam(ctx)
	if err != nil {
		writeError(ctx, h.logger, err)
		return
	}

	chain, err := h.service.GetSolanaChain(ctx, chainID)
	if err != nil {
		writeError(ctx, h.logger, err)
		return
	}
	writeJSON(ctx, h.logger, toChainResponse(chain))
}

// CheckChainRPC handles GET /chains/{tag}/{chainId}/rpc.
func (h *ChainHandler) CheckChainRPC(ctx *fasthttp.RequestCtx) {
	chainID, err := chainIDParam(ctx)
	if err != nil {
		writeError(ctx, h.logger, err)
		return
	}
	tag, _ := ctx.UserValue("tag").(string)

	detail, err := h.service.CheckChainRPC(ctx, chainID, tag)
	if err != nil {
		writeError(ctx, h.logger, err)
		return
	}
	writeJSON(ctx, h.logger, toRPCDetailResponse(detail))
}

func chainIDParam(ctx *fasthttp.RequestCtx) (int64, error) {
	chainIDStr, ok := ctx.UserValue("chainId").(string)
	if !ok {
		return 0, fmt.Errorf("%w: missing chainId", apperrors.ErrInvalidInput)
	}
	chainID, err := strconv.ParseInt(chainIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid chainId %q", apperrors.ErrInvalidInput, chainIDStr)
	}
	return chainID, nil
}

func parseFilter(args *fasthttp.Args) (port.ChainFilter, error) {
	var filter port.ChainFilter
	if t := args.Peek("type"); len(t) > 0 {
		filter.ChainType = entity.ChainType(t)
	}

	parseBool := func(name string) (*bool, error) {
		raw := args.Peek(name)
		if len(raw) == 0 {
			return nil, nil
		}
		v, err := strconv.ParseBool(string(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a boolean, got %q", apperrors.ErrInvalidInput, name, raw)
		}
		return &v, nil
	}

	var err error
	if filter.Mainnet, err = parseBool("mainnet"); err != nil {
		return port.ChainFilter{}, err
	}
	if filter.FeeMarket, err = parseBool("eip1559"); err != nil {
		return port.ChainFilter{}, err
	}
	return filter, nil
}

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrChainNotFound),
		errors.Is(err, domain.ErrNoRPCsAvailable),
		errors.Is(err, apperrors.ErrNotFound):
		return fasthttp.StatusNotFound
	case errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, domain.ErrUnsupportedChainType):
		return fasthttp.StatusBadRequest
	case errors.Is(err, bridge.ErrNotInitialized):
		return fasthttp.StatusConflict
	case errors.Is(err, apperrors.ErrTimeout):
		return fasthttp.StatusGatewayTimeout
	default:
		return fasthttp.StatusInternalServerError
	}
}

func writeError(ctx *fasthttp.RequestCtx, logger *zap.Logger, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == fasthttp.StatusInternalServerError {
		logger.Error("Request failed", zap.ByteString("uri", ctx.RequestURI()), zap.Error(err))
		message = "Internal Server Error"
	} else {
		logger.Debug("Request rejected", zap.ByteString("uri", ctx.RequestURI()), zap.Int("status", status), zap.Error(err))
	}

	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	if encErr := json.NewEncoder(ctx).Encode(errorResponse{Error: message}); encErr != nil {
		logger.Error("Failed to encode error response", zap.Error(encErr))
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, logger *zap.Logger, v interface{}) {
	ctx.SetContentType("application/json")
	if err := json.NewEncoder(ctx).Encode(v); err != nil {
		// Response already started, can't set error code
		logger.Error("Failed to encode response", zap.Error(err))
	}
}
