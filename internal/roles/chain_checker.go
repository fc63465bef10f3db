package roles

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"tempovault-console/internal/chain"
)

const hasRoleABIJSON = `[
	{"inputs":[{"internalType":"bytes32","name":"role","type":"bytes32"},{"internalType":"address","name":"account","type":"address"}],"name":"hasRole","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"}
]`

var hasRoleABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(hasRoleABIJSON))
	if err != nil {
		panic("failed to parse hasRole ABI: " + err.Error())
	}
	hasRoleABI = parsed
}

// ChainChecker resolves capability checks against the governance contract.
type ChainChecker struct {
	client     *chain.Client
	governance common.Address
}

// NewChainChecker binds a checker to the governance contract address.
func NewChainChecker(client *chain.Client, governance string) *ChainChecker {
	return &ChainChecker{client: client, governance: common.HexToAddress(governance)}
}

// HasRole performs one hasRole read.
func (c *ChainChecker) HasRole(ctx context.Context, roleHash, account string) (bool, error) {
	outputs, err := c.client.Call(ctx, c.governance, hasRoleABI, "hasRole",
		common.HexToHash(roleHash), common.HexToAddress(account))
	if err != nil {
		return false, err
	}
	if len(outputs) != 1 {
		return false, errors.New("unexpected hasRole response")
	}
	granted, ok := outputs[0].(bool)
	if !ok {
		return false, errors.New("failed to decode hasRole output")
	}
	return granted, nil
}

var _ Checker = (*ChainChecker)(nil)
