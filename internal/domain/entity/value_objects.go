package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// RPCURL represents a typed URL for an RPC endpoint.
type RPCURL string

// NewRPCURL creates a new RPCURL instance.
func NewRPCURL(rawURL string) (RPCURL, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", fmt.Errorf("rpc url cannot be empty")
	}

	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid rpc url format '%s': %w", rawURL, err)
	}

	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return "", fmt.Errorf("rpc url '%s' has unsupported scheme: '%s'", rawURL, u.Scheme)
	}

	return RPCURL(rawURL), nil
}

// String returns the string representation of the RPCURL.
func (r RPCURL) String() string {
	return string(r)
}

// Protocol returns the protocol derived from the URL scheme.
func (r RPCURL) Protocol() Protocol {
	scheme, _, found := strings.Cut(string(r), "://")
	if !found {
		return ProtocolUnknown
	}
	switch strings.ToLower(scheme) {
	case "http":
		return ProtocolHTTP
	case "https":
		return ProtocolHTTPS
	case "ws":
		return ProtocolWS
	case "wss":
		return ProtocolWSS
	default:
		return ProtocolUnknown
	}
}
