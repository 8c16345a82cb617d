package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"chain-registry/internal/application/port"
	"chain-registry/internal/domain/entity"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog chains",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var getCmd = &cobra.Command{
	Use:   "get <tag> <chain_id>",
	Short: "Show the chain with the given family tag and id",
	Args:  cobra.ExactArgs(2),
	RunE:  runGet,
}

var evmCmd = &cobra.Command{
	Use:   "evm <chain_id>",
	Short: "Show the EVM chain with the given id",
	Args:  cobra.ExactArgs(1),
	RunE:  runTyped(entity.ChainTypeEVM),
}

var solanaCmd = &cobra.Command{
	Use:   "solana <chain_id>",
	Short: "Show the Solana chain with the given id",
	Args:  cobra.ExactArgs(1),
	RunE:  runTyped(entity.ChainTypeSolana),
}

var checkCmd = &cobra.Command{
	Use:   "check <tag> <chain_id>",
	Short: "Probe the RPC endpoint of a chain",
	Args:  cobra.ExactArgs(2),
	RunE:  runCheck,
}

func init() {
	listCmd.Flags().String("type", "", "only chains of this type (evm, solana)")
	listCmd.Flags().String("mainnet", "", "true for mainnets only, false for test networks only")
	listCmd.Flags().String("eip1559", "", "true for fee-market chains only, false for the others")

	rootCmd.AddCommand(listCmd, getCmd, evmCmd, solanaCmd, checkCmd)
}

func optionalBool(cmd *cobra.Command, name string) (*bool, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("--%s must be a boolean, got %q", name, raw)
	}
	return &v, nil
}

func parseChainID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chain id %q", raw)
	}
	return id, nil
}

func runList(cmd *cobra.Command, _ []string) error {
	var (
		filter port.ChainFilter
		err    error
	)
	chainType, _ := cmd.Flags().GetString("type")
	filter.ChainType = entity.ChainType(strings.ToLower(chainType))
	if filter.Mainnet, err = optionalBool(cmd, "mainnet"); err != nil {
		return err
	}
	if filter.FeeMarket, err = optionalBool(cmd, "eip1559"); err != nil {
		return err
	}

	svc, err := newService(cmd)
	if err != nil {
		return err
	}
	chains, err := svc.ListChains(cmd.Context(), filter)
	if err != nil {
		return err
	}
	return printChains(cmd, chains)
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := parseChainID(args[1])
	if err != nil {
		return err
	}
	svc, err := newService(cmd)
	if err != nil {
		return err
	}
	chain, err := svc.GetChain(cmd.Context(), id, args[0])
	if err != nil {
		return err
	}
	return printChains(cmd, []entity.Chain{chain})
}

func runTyped(chainType entity.ChainType) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseChainID(args[0])
		if err != nil {
			return err
		}
		svc, err := newService(cmd)
		if err != nil {
			return err
		}
		var chain entity.Chain
		if chainType == entity.ChainTypeSolana {
			chain, err = svc.GetSolanaChain(cmd.Context(), id)
		} else {
			chain, err = svc.GetEVMChain(cmd.Context(), id)
		}
		if err != nil {
			return err
		}
		return printChains(cmd, []entity.Chain{chain})
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	id, err := parseChainID(args[1])
	if err != nil {
		return err
	}
	svc, err := newService(cmd)
	if err != nil {
		return err
	}
	detail, err := svc.CheckChainRPC(cmd.Context(), id, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, detail)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tURL\tWORKING\tLATENCY\tERROR")
	latency := "-"
	if detail.LatencyMs != nil {
		latency = fmt.Sprintf("%dms", *detail.LatencyMs)
	}
	fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n", detail.ChainKey, detail.URL, detail.IsWorking, latency, detail.Error)
	return w.Flush()
}

// chainView is the JSON output of a chain.
type chainView struct {
	Key              string   `json:"key"`
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	FullName         string   `json:"fullName"`
	ChainType        string   `json:"chainType"`
	Network          string   `json:"network"`
	Symbol           string   `json:"symbol"`
	Decimals         int      `json:"decimals"`
	RPCURL           string   `json:"rpcUrl,omitempty"`
	BlockExplorerURL string   `json:"blockExplorerUrl,omitempty"`
	FaucetURL        string   `json:"faucetUrl,omitempty"`
	Features         []string `json:"features,omitempty"`
	Mainnet          bool     `json:"mainnet"`
	WalletLink       bool     `json:"walletLink"`
}

func toView(c entity.Chain) chainView {
	v := chainView{
		Key:              c.Key(),
		ID:               c.ID,
		Name:             c.Name,
		FullName:         c.FullName,
		ChainType:        c.ChainType.String(),
		Network:          c.Network,
		Symbol:           c.NativeCurrency.Symbol,
		Decimals:         c.NativeCurrency.Decimals,
		RPCURL:           c.RPCURL.String(),
		BlockExplorerURL: c.BlockExplorerURL,
		FaucetURL:        c.FaucetURL,
		Mainnet:          c.IsMainnet(),
		WalletLink:       c.SupportsGenericWalletLink(),
	}
	for _, f := range c.Features {
		v.Features = append(v.Features, f.Name)
	}
	return v
}

func printChains(cmd *cobra.Command, chains []entity.Chain) error {
	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		views := make([]chainView, 0, len(chains))
		for _, c := range chains {
			views = append(views, toView(c))
		}
		return writeJSON(out, views)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tTYPE\tNETWORK\tSYMBOL\tEIP1559\tRPC")
	for _, c := range chains {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
			c.Key(), c.Name, c.ChainType, c.Network, c.NativeCurrency.Symbol, c.SupportsFeeMarket(), c.RPCURL,
		)
	}
	return w.Flush()
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
