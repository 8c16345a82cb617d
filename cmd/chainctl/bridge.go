package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"chain-registry/internal/bridge"

	"github.com/spf13/cobra"
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge <method> [payload]",
	Short: "Run one bridge call and print the callback it posts",
	Long: `Run one bridge call the way a game runtime would and print the callback
message as "<target>.<Method>CallBack <json>".

Methods: ` + strings.Join(bridgeMethodNames(), ", "),
	Args: cobra.RangeArgs(1, 2),
	RunE: runBridge,
}

func init() {
	bridgeCmd.Flags().String("init", "", "initialize payload applied before the call")
	bridgeCmd.Flags().String("target", "ChainBridge", "runtime object that receives the callback")

	rootCmd.AddCommand(bridgeCmd)
}

// writerMessenger prints callbacks, one per line.
type writerMessenger struct {
	mu  sync.Mutex
	out io.Writer
}

func (m *writerMessenger) SendMessage(target, method, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fmt.Fprintf(m.out, "%s.%s %s\n", target, method, message)
}

type bridgeCall func(s *bridge.Session, payload string) (interface{}, error)

// nodeURLRequest is the payload of getNodeUrl.
type nodeURLRequest struct {
	ProjectID  string `json:"project_id"`
	ProjectKey string `json:"project_key"`
}

// sendPlanView is the callback data of a routed send.
type sendPlanView struct {
	ChainKey     string       `json:"chain_key"`
	Route        bridge.Route `json:"route"`
	Transactions []string     `json:"transactions"`
}

func routeTransaction(s *bridge.Session, payload string) (interface{}, error) {
	plan, err := s.RouteTransaction(payload)
	if err != nil {
		return nil, err
	}
	return sendPlanView{ChainKey: plan.Chain.Key(), Route: plan.Route, Transactions: plan.Transactions}, nil
}

var bridgeCalls = map[string]bridgeCall{
	"initialize": func(s *bridge.Session, payload string) (interface{}, error) {
		if err := s.Initialize(payload); err != nil {
			return nil, err
		}
		return json.RawMessage(s.ChainInfo()), nil
	},
	"getChainInfo": func(s *bridge.Session, _ string) (interface{}, error) {
		info := s.ChainInfo()
		if info == "" {
			return nil, bridge.ErrNotInitialized
		}
		return json.RawMessage(info), nil
	},
	"setChainInfo": func(s *bridge.Session, payload string) (interface{}, error) {
		return s.SetChainInfo(payload), nil
	},
	"isSupportChainInfo": func(s *bridge.Session, payload string) (interface{}, error) {
		return s.IsSupportChainInfo(payload), nil
	},
	"signMessage": func(s *bridge.Session, payload string) (interface{}, error) {
		return s.SignMessage(payload)
	},
	"signAndSendTransaction": routeTransaction,
	"batchSendTransactions":  routeTransaction,
	"getNodeUrl": func(s *bridge.Session, payload string) (interface{}, error) {
		var req nodeURLRequest
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return nil, fmt.Errorf("invalid getNodeUrl payload: %w", err)
		}
		return s.NodeURL(req.ProjectID, req.ProjectKey)
	},
	"normalizeAddress": func(s *bridge.Session, payload string) (interface{}, error) {
		chain, ok := s.Active()
		if !ok {
			return nil, bridge.ErrNotInitialized
		}
		return bridge.NormalizeAddress(chain, payload)
	},
}

func bridgeMethodNames() []string {
	names := make([]string, 0, len(bridgeCalls))
	for name := range bridgeCalls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runBridge(cmd *cobra.Command, args []string) error {
	method := args[0]
	call, ok := bridgeCalls[method]
	if !ok {
		return fmt.Errorf("unknown bridge method %q", method)
	}
	var payload string
	if len(args) > 1 {
		payload = args[1]
	}

	cfg, reg, log, err := loadRegistry(cmd)
	if err != nil {
		return err
	}
	session := bridge.NewSession(reg, cfg.Bridge, log)
	if initPayload, _ := cmd.Flags().GetString("init"); initPayload != "" {
		if err := session.Initialize(initPayload); err != nil {
			return err
		}
	}

	target, _ := cmd.Flags().GetString("target")
	dispatcher := bridge.NewDispatcher(&writerMessenger{out: cmd.OutOrStdout()}, log)
	dispatcher.Dispatch(commandContext(cmd), target, method, func(context.Context) (interface{}, error) {
		return call(session, payload)
	})
	dispatcher.Wait()
	return nil
}
