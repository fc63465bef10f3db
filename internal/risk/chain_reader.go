package risk

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
	dexBookABIJSON = `[
		{"inputs":[{"internalType":"bytes32","name":"pairKey","type":"bytes32"}],"name":"books","outputs":[{"internalType":"address","name":"base","type":"address"},{"internalType":"address","name":"quote","type":"address"},{"internalType":"int16","name":"bestBidTick","type":"int16"},{"internalType":"int16","name":"bestAskTick","type":"int16"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"address","name":"base","type":"address"},{"internalType":"int16","name":"tick","type":"int16"},{"internalType":"bool","name":"isBid","type":"bool"}],"name":"getTickLevel","outputs":[{"internalType":"uint128","name":"head","type":"uint128"},{"internalType":"uint128","name":"tail","type":"uint128"},{"internalType":"uint128","name":"totalLiquidity","type":"uint128"}],"stateMutability":"view","type":"function"}
	]`
	breakerABIJSON = `[
		{"inputs":[{"internalType":"bytes32","name":"pairId","type":"bytes32"}],"name":"circuitBroken","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"}
	]`
)

var (
	dexBookABI abi.ABI
	breakerABI abi.ABI
)

func init() {
	parsed, err := abi.JSON(strings.NewReader(dexBookABIJSON))
	if err != nil {
		panic("failed to parse dex book ABI: " + err.Error())
	}
	dexBookABI = parsed

	parsed, err = abi.JSON(strings.NewReader(breakerABIJSON))
	if err != nil {
		panic("failed to parse circuit breaker ABI: " + err.Error())
	}
	breakerABI = parsed
}

// ChainReader reads the order book from the Tempo DEX and breaker state
// from the risk controller.
type ChainReader struct {
	client         *chain.Client
	dex            common.Address
	riskController common.Address
	pairKey        common.Hash
	pairID         common.Hash
	baseToken      common.Address
}

// NewChainReader binds a book reader to one pair. pairKey addresses the DEX
// book; pairID addresses the risk controller's breaker slot.
func NewChainReader(client *chain.Client, dex, riskController, pairKey, pairID, baseToken string) *ChainReader {
	return &ChainReader{
		client:         client,
		dex:            common.HexToAddress(dex),
		riskController: common.HexToAddress(riskController),
		pairKey:        common.HexToHash(pairKey),
		pairID:         common.HexToHash(pairID),
		baseToken:      common.HexToAddress(baseToken),
	}
}

// BestTicks reads the book's best bid and ask ticks.
func (r *ChainReader) BestTicks(ctx context.Context) (int64, int64, error) {
	outputs, err := r.client.Call(ctx, r.dex, dexBookABI, "books", r.pairKey)
	if err != nil {
		return 0, 0, err
	}
	if len(outputs) != 4 {
		return 0, 0, errors.New("unexpected books response")
	}
	bestBid, okBid := outputs[2].(int16)
	bestAsk, okAsk := outputs[3].(int16)
	if !okBid || !okAsk {
		return 0, 0, errors.New("failed to decode book ticks")
	}
	return int64(bestBid), int64(bestAsk), nil
}

// DepthAt reads total resting liquidity at one tick on one side.
func (r *ChainReader) DepthAt(ctx context.Context, tick int64, isBid bool) (*big.Int, error) {
	outputs, err := r.client.Call(ctx, r.dex, dexBookABI, "getTickLevel", r.baseToken, int16(tick), isBid)
	if err != nil {
		return nil, err
	}
	if len(outputs) != 3 {
		return nil, errors.New("unexpected getTickLevel response")
	}
	liquidity, ok := outputs[2].(*big.Int)
	if !ok {
		return nil, errors.New("failed to decode tick liquidity")
	}
	return liquidity, nil
}

// CircuitBroken reads the breaker flag for the pair.
func (r *ChainReader) CircuitBroken(ctx context.Context) (bool, error) {
	outputs, err := r.client.Call(ctx, r.riskController, breakerABI, "circuitBroken", r.pairID)
	if err != nil {
		return false, err
	}
	if len(outputs) != 1 {
		return false, errors.New("unexpected circuitBroken response")
	}
	broken, ok := outputs[0].(bool)
	if !ok {
		return false, errors.New("failed to decode circuitBroken output")
	}
	return broken, nil
}

var _ BookReader = (*ChainReader)(nil)
