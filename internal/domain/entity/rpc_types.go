package entity

// Protocol defines the type for RPC protocols.
type Protocol string

// Constants for known protocols.
const (
	ProtocolHTTP    Protocol = "http"
	ProtocolHTTPS   Protocol = "https"
	ProtocolWS      Protocol = "ws"
	ProtocolWSS     Protocol = "wss"
	ProtocolUnknown Protocol = "unknown"
)

// RPCDetail holds information about a chain's RPC endpoint after checking.
type RPCDetail struct {
	ChainKey  string
	URL       RPCURL
	Protocol  Protocol
	IsWorking bool
	LatencyMs *int64
	Error     string
}
