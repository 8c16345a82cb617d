package http

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	handler "chain-registry/internal/adapter/handler/http"
	"chain-registry/internal/adapter/storage/memory"
	"chain-registry/internal/application"
	"chain-registry/internal/bridge"
	"chain-registry/internal/config"
	"chain-registry/internal/domain/entity"
	"chain-registry/internal/metrics"

	"github.com/fasthttp/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type stubChecker struct{}

func (stubChecker) CheckRPC(context.Context, entity.RPCURL, entity.ChainType) (bool, time.Duration, error) {
	return true, time.Millisecond, nil
}

func newTestServer(t *testing.T) fasthttp.RequestHandler {
	t.Helper()
	reg, err := application.DefaultRegistry()
	require.NoError(t, err)
	cfg := config.Config{Cache: config.CacheConfig{DefaultExpiration: time.Minute, CleanupInterval: time.Minute}}
	collector := metrics.NewCollector("")
	svc := application.NewChainService(
		context.Background(), reg, memory.NewCacheRepository(cfg, zap.NewNop()), stubChecker{},
		collector, zap.NewNop(), cfg,
	)

	session := bridge.NewSession(reg, config.BridgeConfig{
		NodeBaseURL:  "https://rpc.particle.network",
		RelayEnabled: true,
	}, zap.NewNop())

	r := router.New()
	RegisterRoutes(r,
		handler.NewChainHandler(svc, zap.NewNop()),
		handler.NewBridgeHandler(session, zap.NewNop()),
		collector.Registry(), zap.NewNop(),
	)
	return Handler(r, zap.NewNop())
}

func serve(h fasthttp.RequestHandler, uri string, headers map[string]string) *fasthttp.RequestCtx {
	return serveRequest(h, fasthttp.MethodGet, uri, "", headers)
}

func serveRequest(h fasthttp.RequestHandler, method, uri, body string, headers map[string]string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != "" {
		req.SetBodyString(body)
	}
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	h(ctx)
	return ctx
}

func TestRoutes(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		uri    string
		status int
		key    string
	}{
		{"/chains/ethereum/1", fasthttp.StatusOK, "ethereum-1"},
		{"/chains/evm/56", fasthttp.StatusOK, "bsc-56"},
		{"/chains/solana/103", fasthttp.StatusOK, "solana-103"},
		{"/chains/solana/1", fasthttp.StatusNotFound, ""},
		{"/chains/ethereum/abc", fasthttp.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			ctx := serve(h, tt.uri, nil)
			require.Equal(t, tt.status, ctx.Response.StatusCode())
			if tt.key != "" {
				var resp handler.ChainResponse
				require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
				assert.Equal(t, tt.key, resp.Key)
			}
		})
	}
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	h := newTestServer(t)

	ctx := serve(h, "/health", nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "OK", string(ctx.Response.Body()))

	serve(h, "/chains/ethereum/1", nil)
	ctx = serve(h, "/metrics", nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "chain_registry_registry_lookups_total")
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t)

	ctx := serve(h, "/health", nil)
	assert.Len(t, string(ctx.Response.Header.Peek(HeaderRequestID)), 36)

	ctx = serve(h, "/health", map[string]string{HeaderRequestID: "abc-123"})
	assert.Equal(t, "abc-123", string(ctx.Response.Header.Peek(HeaderRequestID)))
}

func TestBridgeRoutes(t *testing.T) {
	h := newTestServer(t)

	decode := func(t *testing.T, ctx *fasthttp.RequestCtx, v interface{}) {
		t.Helper()
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), v), string(ctx.Response.Body()))
	}

	t.Run("requires initialize", func(t *testing.T) {
		assert.Equal(t, fasthttp.StatusConflict, serve(h, "/bridge/chain-info", nil).Response.StatusCode())
		ctx := serveRequest(h, fasthttp.MethodPost, "/bridge/sign-message", "hello", nil)
		assert.Equal(t, fasthttp.StatusConflict, ctx.Response.StatusCode())
	})

	t.Run("initialize rejects a tag of another family", func(t *testing.T) {
		ctx := serveRequest(h, fasthttp.MethodPost, "/bridge/initialize", `{"chain_name":"bsc","chain_id":1}`, nil)
		assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
		ctx = serveRequest(h, fasthttp.MethodPost, "/bridge/initialize", `{"chain_name":"bsc"`, nil)
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	})

	t.Run("ethereum session", func(t *testing.T) {
		ctx := serveRequest(h, fasthttp.MethodPost, "/bridge/initialize", `{"chain_name":"ethereum","chain_id":1,"env":"dev"}`, nil)
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		var session handler.SessionResponse
		decode(t, ctx, &session)
		assert.Equal(t, "Ethereum", session.Chain.ChainName)
		assert.Equal(t, "dev", session.Env)
		assert.True(t, session.Relay)

		ctx = serve(h, "/bridge/chain-info", nil)
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.JSONEq(t, `{"chain_name":"Ethereum","chain_id":1,"chain_id_name":"Mainnet"}`, string(ctx.Response.Body()))

		ctx = serveRequest(h, fasthttp.MethodPost, "/bridge/transactions", `{"transaction":"0x01","fee_mode":{"option":"gasless"}}`, nil)
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		var plan handler.SendPlanResponse
		decode(t, ctx, &plan)
		assert.Equal(t, "ethereum-1", plan.ChainKey)
		assert.Equal(t, bridge.RouteRelay, plan.Route)
		require.NotNil(t, plan.TxType)
		assert.Equal(t, uint8(2), *plan.TxType)

		ctx = serve(h, "/bridge/addresses/0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", nil)
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		var addr map[string]string
		decode(t, ctx, &addr)
		assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", addr["address"])
		assert.Equal(t, "hex", addr["scheme"])

		ctx = serve(h, "/bridge/node-url?projectId=p&projectKey=k", nil)
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		var node map[string]string
		decode(t, ctx, &node)
		assert.Equal(t, "https://rpc.particle.network/evm-chain?chainId=1&projectUuid=p&projectKey=k", node["url"])

		assert.Equal(t, fasthttp.StatusBadRequest, serve(h, "/bridge/node-url", nil).Response.StatusCode())
	})

	t.Run("switch to solana", func(t *testing.T) {
		ctx := serveRequest(h, fasthttp.MethodPut, "/bridge/chain-info", `{"chain_name":"solana","chain_id":101}`, nil)
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		var session handler.SessionResponse
		decode(t, ctx, &session)
		assert.Equal(t, int64(101), session.Chain.ChainID)
		assert.False(t, session.Relay)

		ctx = serveRequest(h, fasthttp.MethodPost, "/bridge/sign-message", "hello", nil)
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		var signed map[string]string
		decode(t, ctx, &signed)
		assert.Equal(t, "Cn8eVZg", signed["message"])

		ctx = serveRequest(h, fasthttp.MethodPost, "/bridge/transactions", `{"transaction":"tx"}`, nil)
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		var plan handler.SendPlanResponse
		decode(t, ctx, &plan)
		assert.Equal(t, bridge.RouteDirect, plan.Route)
		assert.Nil(t, plan.TxType)

		ctx = serve(h, "/bridge/node-url?projectId=p&projectKey=k", nil)
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	})

	t.Run("set chain info misses keep the active chain", func(t *testing.T) {
		ctx := serveRequest(h, fasthttp.MethodPut, "/bridge/chain-info", `{"chain_name":"tron","chain_id":1}`, nil)
		assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
		ctx = serveRequest(h, fasthttp.MethodPut, "/bridge/chain-info", `{`, nil)
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

		ctx = serve(h, "/bridge/chain-info", nil)
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Body()), `"chain_id":101`)
	})

	t.Run("support check", func(t *testing.T) {
		var resp map[string]bool
		ctx := serveRequest(h, fasthttp.MethodPost, "/bridge/chain-info/support", `{"chain_name":"polygon","chain_id":137}`, nil)
		decode(t, ctx, &resp)
		assert.True(t, resp["supported"])

		ctx = serveRequest(h, fasthttp.MethodPost, "/bridge/chain-info/support", `{"chain_name":"tron","chain_id":728126428}`, nil)
		decode(t, ctx, &resp)
		assert.False(t, resp["supported"])
	})
}
