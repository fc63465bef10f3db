package ledger

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"tempovault-console/internal/chain"
)

const (
	vaultBalancesABIJSON = `[
		{"inputs":[{"internalType":"address","name":"token","type":"address"}],"name":"tokenBalances","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"address","name":"token","type":"address"}],"name":"deployedCapital","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
	]`
	erc20BalanceABIJSON = `[
		{"inputs":[{"internalType":"address","name":"account","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
	]`
	dexBalanceABIJSON = `[
		{"inputs":[{"internalType":"address","name":"user","type":"address"},{"internalType":"address","name":"token","type":"address"}],"name":"balanceOf","outputs":[{"internalType":"uint128","name":"","type":"uint128"}],"stateMutability":"view","type":"function"}
	]`
)

var (
	vaultBalancesABI abi.ABI
	erc20BalanceABI  abi.ABI
	dexBalanceABI    abi.ABI
)

func init() {
	for _, entry := range []struct {
		json   string
		target *abi.ABI
	}{
		{vaultBalancesABIJSON, &vaultBalancesABI},
		{erc20BalanceABIJSON, &erc20BalanceABI},
		{dexBalanceABIJSON, &dexBalanceABI},
	} {
		parsed, err := abi.JSON(strings.NewReader(entry.json))
		if err != nil {
			panic("failed to parse balance ABI: " + err.Error())
		}
		*entry.target = parsed
	}
}

// ChainReader reads tier balances from the deployed protocol contracts.
type ChainReader struct {
	client   *chain.Client
	vault    common.Address
	strategy common.Address
	dex      common.Address
}

// NewChainReader binds a balance reader to one protocol deployment.
func NewChainReader(client *chain.Client, vault, strategy, dex string) *ChainReader {
	return &ChainReader{
		client:   client,
		vault:    common.HexToAddress(vault),
		strategy: common.HexToAddress(strategy),
		dex:      common.HexToAddress(dex),
	}
}

func asBigInt(outputs []interface{}) (*big.Int, error) {
	if len(outputs) != 1 {
		return nil, errors.New("unexpected output arity")
	}
	v, ok := outputs[0].(*big.Int)
	if !ok {
		return nil, errors.New("output is not an integer")
	}
	return v, nil
}

// VaultBalance reads the vault's stated total for a token.
func (r *ChainReader) VaultBalance(ctx context.Context, tokenAddr string) (*big.Int, error) {
	outputs, err := r.client.Call(ctx, r.vault, vaultBalancesABI, "tokenBalances", common.HexToAddress(tokenAddr))
	if err != nil {
		return nil, err
	}
	return asBigInt(outputs)
}

// DeployedCapital reads the amount the vault attributes to strategies.
func (r *ChainReader) DeployedCapital(ctx context.Context, tokenAddr string) (*big.Int, error) {
	outputs, err := r.client.Call(ctx, r.vault, vaultBalancesABI, "deployedCapital", common.HexToAddress(tokenAddr))
	if err != nil {
		return nil, err
	}
	return asBigInt(outputs)
}

// StrategyBalance reads the strategy contract's idle ERC-20 holdings.
func (r *ChainReader) StrategyBalance(ctx context.Context, tokenAddr string) (*big.Int, error) {
	outputs, err := r.client.Call(ctx, common.HexToAddress(tokenAddr), erc20BalanceABI, "balanceOf", r.strategy)
	if err != nil {
		return nil, err
	}
	return asBigInt(outputs)
}

// DexBalance reads the strategy's escrowed holdings inside the DEX.
func (r *ChainReader) DexBalance(ctx context.Context, tokenAddr string) (*big.Int, error) {
	outputs, err := r.client.Call(ctx, r.dex, dexBalanceABI, "balanceOf", r.strategy, common.HexToAddress(tokenAddr))
	if err != nil {
		return nil, err
	}
	return asBigInt(outputs)
}

var _ BalanceReader = (*ChainReader)(nil)
