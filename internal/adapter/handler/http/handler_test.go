package http

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"chain-registry/internal/adapter/storage/memory"
	"chain-registry/internal/application"
	"chain-registry/internal/config"
	"chain-registry/internal/domain/entity"
	"chain-registry/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type stubChecker struct{}

func (stubChecker) CheckRPC(context.Context, entity.RPCURL, entity.ChainType) (bool, time.Duration, error) {
	return true, 15 * time.Millisecond, nil
}

func newTestHandler(t *testing.T) *ChainHandler {
	t.Helper()
	reg, err := application.DefaultRegistry()
	require.NoError(t, err)
	cfg := config.Config{Cache: config.CacheConfig{DefaultExpiration: time.Minute, CleanupInterval: time.Minute}}
	svc := application.NewChainService(
		context.Background(), reg, memory.NewCacheRepository(cfg, zap.NewNop()), stubChecker{},
		metrics.NewCollector(""), zap.NewNop(), cfg,
	)
	return NewChainHandler(svc, zap.NewNop())
}

func newRequestCtx(uri string, params map[string]string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI(uri)
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	for k, v := range params {
		ctx.SetUserValue(k, v)
	}
	return ctx
}

func TestChainHandler_GetChain(t *testing.T) {
	h := newTestHandler(t)

	ctx := newRequestCtx("/chains/ethereum/1", map[string]string{"tag": "ethereum", "chainId": "1"})
	h.GetChain(ctx)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var resp ChainResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, "ethereum-1", resp.Key)
	assert.Equal(t, "Ethereum Mainnet", resp.FullName)
	assert.Equal(t, "ETH", resp.NativeCurrency.Symbol)
	assert.Equal(t, 18, resp.NativeCurrency.Decimals)
	assert.True(t, resp.IsMainnet)
	assert.True(t, resp.WalletLink)
}

func TestChainHandler_GetChain_Errors(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name   string
		params map[string]string
		status int
	}{
		{"unknown chain", map[string]string{"tag": "ethereum", "chainId": "424242"}, fasthttp.StatusNotFound},
		{"cross-family", map[string]string{"tag": "solana", "chainId": "1"}, fasthttp.StatusNotFound},
		{"bad id", map[string]string{"tag": "ethereum", "chainId": "one"}, fasthttp.StatusBadRequest},
		{"missing id", map[string]string{"tag": "ethereum"}, fasthttp.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newRequestCtx("/chains/x/y", tt.params)
			h.GetChain(ctx)
			assert.Equal(t, tt.status, ctx.Response.StatusCode())

			var resp errorResponse
			require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestChainHandler_TypedLookups(t *testing.T) {
	h := newTestHandler(t)

	ctx := newRequestCtx("/chains/solana/101", map[string]string{"chainId": "101"})
	h.GetSolanaChain(ctx)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var resp ChainResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, "SOL", resp.NativeCurrency.Symbol)
	assert.Equal(t, 9, resp.NativeCurrency.Decimals)
	assert.False(t, resp.WalletLink)

	ctx = newRequestCtx("/chains/evm/101", map[string]string{"chainId": "101"})
	h.GetEVMChain(ctx)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	ctx = newRequestCtx("/chains/evm/137", map[string]string{"chainId": "137"})
	h.GetEVMChain(ctx)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.True(t, resp.EIP1559)
	assert.Equal(t, []string{"EIP1559"}, resp.Features)
}

func TestChainHandler_ListChains(t *testing.T) {
	h := newTestHandler(t)

	ctx := newRequestCtx("/chains?type=solana", nil)
	h.ListChains(ctx)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var resp []ChainResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Len(t, resp, 3)
	for _, c := range resp {
		assert.Equal(t, "solana", c.ChainType)
	}

	ctx = newRequestCtx("/chains?type=evm&mainnet=false&eip1559=true", nil)
	h.ListChains(ctx)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	require.NotEmpty(t, resp)
	for _, c := range resp {
		assert.False(t, c.IsMainnet)
		assert.True(t, c.EIP1559)
	}

	ctx = newRequestCtx("/chains?mainnet=maybe", nil)
	h.ListChains(ctx)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestChainHandler_CheckChainRPC(t *testing.T) {
	h := newTestHandler(t)

	ctx := newRequestCtx("/chains/ethereum/1/rpc", map[string]string{"tag": "ethereum", "chainId": "1"})
	h.CheckChainRPC(ctx)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp RPCDetailResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, "ethereum-1", resp.Key)
	assert.True(t, resp.IsWorking)
	require.NotNil(t, resp.LatencyMs)
	assert.Equal(t, int64(15), *resp.LatencyMs)
}
