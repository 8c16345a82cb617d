package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"chain-registry/internal/domain/entity"
	domainService "chain-registry/internal/domain/service"
	"chain-registry/internal/pkg/apperrors"

	"github.com/gorilla/websocket"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainService.RPCChecker = (*Checker)(nil)

const defaultReadTimeout = 10 * time.Second

// Checker implements the domainService.RPCChecker interface.
type Checker struct {
	client *fasthttp.Client
	dialer *websocket.Dialer
	logger *zap.Logger
}

// NewChecker creates a new RPC checker instance.
func NewChecker(logger *zap.Logger) *Checker {
	return &Checker{
		client: &fasthttp.Client{
			ReadTimeout: defaultReadTimeout,
		},
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: defaultReadTimeout,
		},
		logger: logger.Named("RPCCheckerAdapter"),
	}
}

var (
	// evmPayload asks the node for its chain id; any JSON-RPC result counts as healthy.
	evmPayload = []byte(`{"jsonrpc":"2.0","method":"eth_chainId","params":[],"id":1}`)
	// solanaPayload uses the Solana health endpoint, which answers "ok" when the node is caught up.
	solanaPayload = []byte(`{"jsonrpc":"2.0","method":"getHealth","id":1}`)
)

// payloadFor returns the probe request for a chain family.
func payloadFor(chainType entity.ChainType) []byte {
	if chainType == entity.ChainTypeSolana {
		return solanaPayload
	}
	return evmPayload
}

// JSONRPCResponse defines the basic structure for a JSON-RPC response.
type JSONRPCResponse struct {
	ID      interface{}     `json:"id"`
	Jsonrpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError defines the structure for a JSON-RPC error.
type JSONRPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// CheckRPC determines the protocol and calls the appropriate check function.
func (c *Checker) CheckRPC(
	ctx context.Context,
	rpcURL entity.RPCURL,
	chainType entity.ChainType,
) (bool, time.Duration, error) {
	startTime := time.Now()
	payload := payloadFor(chainType)

	switch rpcURL.Protocol() {
	case entity.ProtocolWS, entity.ProtocolWSS:
		return c.checkWSS(ctx, rpcURL.String(), payload, startTime)
	case entity.ProtocolHTTP, entity.ProtocolHTTPS:
		return c.checkHTTP(ctx, rpcURL.String(), payload, startTime)
	}

	c.logger.Warn("Skipping check for unsupported protocol", zap.String("url", rpcURL.String()))
	return false, 0, fmt.Errorf("%w: unsupported protocol in URL %s", apperrors.ErrInvalidInput, rpcURL)
}

// effectiveTimeout caps the client read timeout by the context deadline.
func (c *Checker) effectiveTimeout(ctx context.Context) time.Duration {
	timeout := c.client.ReadTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout || timeout <= 0 {
			timeout = remaining
		}
	}
	return timeout
}

// checkHTTP performs the JSON-RPC check over HTTP/HTTPS.
func (c *Checker) checkHTTP(ctx context.Context, rpcURL string, payload []byte, startTime time.Time) (bool, time.Duration, error) {
	timeout := c.effectiveTimeout(ctx)
	if timeout <= 0 {
		return false, 0, fmt.Errorf("%w: no time left to check %s", apperrors.ErrTimeout, rpcURL)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rpcURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	requestErr := c.client.DoTimeout(req, resp, timeout)
	latency := time.Since(startTime)

	if requestErr != nil {
		if errors.Is(requestErr, fasthttp.ErrTimeout) {
			c.logger.Debug("HTTP RPC check timed out",
				zap.String("url", rpcURL), zap.Duration("timeout", timeout), zap.Error(requestErr),
			)
			return false, latency, fmt.Errorf("%w: http request to %s timed out after %v: %v",
				apperrors.ErrTimeout, rpcURL, timeout, requestErr,
			)
		}
		c.logger.Debug("HTTP RPC check request failed", zap.String("url", rpcURL), zap.Error(requestErr))
		return false, latency, fmt.Errorf("%w: http request to %s failed: %v",
			apperrors.ErrExternalServiceFailure, rpcURL, requestErr,
		)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Debug("HTTP RPC check returned non-OK status",
			zap.String("url", rpcURL), zap.Int("statusCode", resp.StatusCode()),
		)
		return false, latency, fmt.Errorf("%w: rpc %s returned non-OK http status: %d",
			apperrors.ErrExternalServiceFailure, rpcURL, resp.StatusCode(),
		)
	}

	isValid, jsonErr := c.validateJSONRPCResponse(rpcURL, resp.Body())
	return isValid, latency, jsonErr
}

// checkWSS performs the JSON-RPC check over WSS/WS.
func (c *Checker) checkWSS(ctx context.Context, rpcURL string, payload []byte, startTime time.Time) (bool, time.Duration, error) {
	c.logger.Debug("Attempting WSS connection", zap.String("url", rpcURL))

	conn, _, err := c.dialer.DialContext(ctx, rpcURL, nil)
	if err != nil {
		c.logger.Debug("WSS dial failed", zap.String("url", rpcURL), zap.Error(err))
		return false, time.Since(startTime), c.wrapWSSError(ctx, "dial", rpcURL, err)
	}
	defer conn.Close()

	operationTimeout := c.effectiveTimeout(ctx)
	if operationTimeout <= 0 {
		return false, time.Since(startTime), fmt.Errorf("%w: no time left to check %s", apperrors.ErrTimeout, rpcURL)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(operationTimeout))
	_ = conn.SetReadDeadline(time.Now().Add(operationTimeout))

	if wErr := conn.WriteMessage(websocket.TextMessage, payload); wErr != nil {
		c.logger.Debug("WSS write message failed", zap.String("url", rpcURL), zap.Error(wErr))
		return false, time.Since(startTime), c.wrapWSSError(ctx, "write", rpcURL, wErr)
	}

	_, message, rErr := conn.ReadMessage()
	latency := time.Since(startTime)
	if rErr != nil {
		c.logger.Debug("WSS read message failed", zap.String("url", rpcURL), zap.Error(rErr))
		return false, latency, c.wrapWSSError(ctx, "read", rpcURL, rErr)
	}

	isValid, jsonErr := c.validateJSONRPCResponse(rpcURL, message)
	return isValid, latency, jsonErr
}

// wrapWSSError classifies a websocket failure as timeout or external failure.
func (c *Checker) wrapWSSError(ctx context.Context, op, rpcURL string, err error) error {
	var netErr interface{ Timeout() bool }
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: wss %s %s timed out: %v", apperrors.ErrTimeout, op, rpcURL, err)
	}
	return fmt.Errorf("%w: wss %s %s failed: %v", apperrors.ErrExternalServiceFailure, op, rpcURL, err)
}

// validateJSONRPCResponse checks if the response body is a valid, successful JSON-RPC response.
func (c *Checker) validateJSONRPCResponse(rpcURL string, body []byte) (bool, error) {
	var rpcResp JSONRPCResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		c.logger.Debug("RPC check failed to unmarshal JSON response",
			zap.String("url", rpcURL), zap.ByteString("body", body), zap.Error(err),
		)
		return false, fmt.Errorf("%w: rpc %s returned invalid JSON response: %v",
			apperrors.ErrExternalServiceFailure, rpcURL, err,
		)
	}

	if rpcResp.Error != nil {
		c.logger.Debug("RPC check returned JSON-RPC error",
			zap.String("url", rpcURL),
			zap.Int("errorCode", rpcResp.Error.Code),
			zap.String("errorMessage", rpcResp.Error.Message),
		)
		return false, fmt.Errorf("%w: rpc %s returned json-rpc error: %d %s",
			apperrors.ErrExternalServiceFailure, rpcURL, rpcResp.Error.Code, rpcResp.Error.Message,
		)
	}

	if rpcResp.Jsonrpc != "2.0" || rpcResp.Result == nil {
		c.logger.Debug("RPC check returned invalid JSON-RPC structure",
			zap.String("url", rpcURL), zap.ByteString("body", body),
		)
		return false, fmt.Errorf("%w: rpc %s returned invalid JSON-RPC structure",
			apperrors.ErrExternalServiceFailure, rpcURL,
		)
	}

	return true, nil
}
