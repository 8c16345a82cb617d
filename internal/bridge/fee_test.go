package bridge

import (
	"sync"
	"testing"

	"chain-registry/internal/config"
	"chain-registry/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSendRequest(t *testing.T) {
	req, err := DecodeSendRequest(`{"transaction":"0xf86b"}`)
	require.NoError(t, err)
	assert.Equal(t, FeeNative, req.FeeMode.Option)

	req, err = DecodeSendRequest(`{"transaction":"0xf86b","fee_mode":{"option":"token","token_paymaster_address":"0xabc","fee_quote":{"token":"USDC"}}}`)
	require.NoError(t, err)
	assert.Equal(t, FeeToken, req.FeeMode.Option)
	assert.JSONEq(t, `{"token":"USDC"}`, string(req.FeeMode.FeeQuote))

	_, err = DecodeSendRequest(`{"transaction":"0xf86b","fee_mode":{"option":"free"}}`)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = DecodeSendRequest(`{"fee_mode":{"option":"native"}}`)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSession_RouteTransaction(t *testing.T) {
	const paymaster = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

	t.Run("not initialized", func(t *testing.T) {
		s := newTestSession(t, config.BridgeConfig{RelayEnabled: true})
		_, err := s.RouteTransaction(`{"transaction":"0x01"}`)
		assert.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("relay on evm", func(t *testing.T) {
		s := newTestSession(t, config.BridgeConfig{RelayEnabled: true})
		require.True(t, s.SetChainInfo(`{"chain_name":"polygon","chain_id":137}`))

		plan, err := s.RouteTransaction(`{"transaction":"0x01","fee_mode":{"option":"gasless"}}`)
		require.NoError(t, err)
		assert.Equal(t, RouteRelay, plan.Route)
		assert.Equal(t, []string{"0x01"}, plan.Transactions)
		assert.Equal(t, FeeGasless, plan.FeeMode.Option)

		plan, err = s.RouteTransaction(`{"transactions":["0x01","0x02"],"fee_mode":{"option":"token","token_paymaster_address":"` + paymaster + `"}}`)
		require.NoError(t, err)
		assert.Equal(t, RouteRelay, plan.Route)
		assert.Len(t, plan.Transactions, 2)

		_, err = s.RouteTransaction(`{"transaction":"0x01","fee_mode":{"option":"token","token_paymaster_address":"nope"}}`)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("direct on solana", func(t *testing.T) {
		s := newTestSession(t, config.BridgeConfig{RelayEnabled: true})
		require.True(t, s.SetChainInfo(`{"chain_name":"solana","chain_id":101}`))

		plan, err := s.RouteTransaction(`{"transaction":"base58tx"}`)
		require.NoError(t, err)
		assert.Equal(t, RouteDirect, plan.Route)
		assert.Equal(t, "solana-101", plan.Chain.Key())

		_, err = s.RouteTransaction(`{"transactions":["a","b"]}`)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "batch needs the relay")
	})

	t.Run("direct when relay disabled", func(t *testing.T) {
		s := newTestSession(t, config.BridgeConfig{})
		require.True(t, s.SetChainInfo(`{"chain_name":"ethereum","chain_id":1}`))

		plan, err := s.RouteTransaction(`{"transaction":"0x01"}`)
		require.NoError(t, err)
		assert.Equal(t, RouteDirect, plan.Route)

		_, err = s.RouteTransaction(`{"transaction":"0x01","fee_mode":{"option":"token","token_paymaster_address":"` + paymaster + `"}}`)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestSession_RouteTransactionMatchesPlannedChain(t *testing.T) {
	s := newTestSession(t, config.BridgeConfig{RelayEnabled: true})
	require.True(t, s.SetChainInfo(`{"chain_name":"polygon","chain_id":137}`))

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		payloads := []string{
			`{"chain_name":"solana","chain_id":101}`,
			`{"chain_name":"polygon","chain_id":137}`,
		}
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
				s.SetChainInfo(payloads[i%2])
			}
		}
	}()

	for i := 0; i < 500; i++ {
		plan, err := s.RouteTransaction(`{"transaction":"0x01"}`)
		require.NoError(t, err)
		if plan.Chain.IsSolana() {
			assert.Equal(t, RouteDirect, plan.Route)
		} else {
			assert.Equal(t, RouteRelay, plan.Route, plan.Chain.Key())
		}
	}
	close(done)
	wg.Wait()
}

func TestSession_NodeURL(t *testing.T) {
	s := newTestSession(t, config.BridgeConfig{NodeBaseURL: "https://rpc.particle.network"})

	_, err := s.NodeURL("p", "k")
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.True(t, s.SetChainInfo(`{"chain_name":"ethereum","chain_id":1}`))
	u, err := s.NodeURL("p", "k")
	require.NoError(t, err)
	assert.Equal(t, "https://rpc.particle.network/evm-chain?chainId=1&projectUuid=p&projectKey=k", u)
}
