package http

import (
	"time"

	handler "chain-registry/internal/adapter/handler/http"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
)

// HeaderRequestID carries the request id; an incoming value is reused.
const HeaderRequestID = "X-Request-ID"

// RegisterRoutes sets up the routes for the chain and bridge handlers, metrics
// and health checks. Bridge routes are skipped when b is nil.
func RegisterRoutes(r *router.Router, h *handler.ChainHandler, b *handler.BridgeHandler, gatherer prometheus.Gatherer, logger *zap.Logger) {
	logger.Info("Setting up application-specific routes...")

	r.GET("/chains", h.ListChains)
	r.GET("/chains/evm/{chainId:[0-9]+}", h.GetEVMChain)
	r.GET("/chains/solana/{chainId:[0-9]+}", h.GetSolanaChain)
	r.GET("/chains/{tag}/{chainId:[0-9]+}", h.GetChain)
	r.GET("/chains/{tag}/{chainId:[0-9]+}/rpc", h.CheckChainRPC)

	if b != nil {
		logger.Info("Setting up bridge routes...")
		bridgeGroup := r.Group("/bridge")
		bridgeGroup.POST("/initialize", b.Initialize)
		bridgeGroup.GET("/chain-info", b.GetChainInfo)
		bridgeGroup.PUT("/chain-info", b.SetChainInfo)
		bridgeGroup.POST("/chain-info/support", b.IsSupportChainInfo)
		bridgeGroup.POST("/sign-message", b.SignMessage)
		bridgeGroup.GET("/addresses/{address}", b.NormalizeAddress)
		bridgeGroup.POST("/transactions", b.RouteTransaction)
		bridgeGroup.GET("/node-url", b.NodeURL)
	}

	logger.Info("Setting up metrics route...")
	r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	logger.Info("Setting up health check route...")
	r.GET("/health", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("OK")
	})

	logger.Info("All routes registered.")
}

// RequestID tags every request and response with a request id.
func RequestID(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		id := string(ctx.Request.Header.Peek(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		ctx.SetUserValue(HeaderRequestID, id)
		ctx.Response.Header.Set(HeaderRequestID, id)
		next(ctx)
	}
}

// Logging logs every request once it has been served.
func Logging(logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	logger = logger.Named("HTTP")
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)
			requestID, _ := ctx.UserValue(HeaderRequestID).(string)
			logger.Info("Request served",
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("uri", ctx.RequestURI()),
				zap.Int("status", ctx.Response.StatusCode()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestId", requestID),
			)
		}
	}
}

// Handler wraps the router with request id and logging middleware.
func Handler(r *router.Router, logger *zap.Logger) fasthttp.RequestHandler {
	return RequestID(Logging(logger)(r.Handler))
}
