package deploy

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"tempovault-console/internal/chain"
	"tempovault-console/internal/ledger"
)

const (
	deployToStrategyABIJSON = `[
		{"inputs":[{"internalType":"address","name":"strategy","type":"address"},{"internalType":"address","name":"token","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"},{"internalType":"bytes32","name":"pairId","type":"bytes32"}],"name":"deployToStrategy","outputs":[{"internalType":"uint256","name":"deploymentId","type":"uint256"}],"stateMutability":"nonpayable","type":"function"}
	]`
	deployLiquidityABIJSON = `[
		{"inputs":[{"internalType":"bytes32","name":"pairId","type":"bytes32"},{"internalType":"uint128","name":"baseAmount","type":"uint128"},{"internalType":"uint128","name":"quoteAmount","type":"uint128"},{"internalType":"int16","name":"centerTick","type":"int16"}],"name":"deployLiquidity","outputs":[{"internalType":"uint128[]","name":"orderIds","type":"uint128[]"}],"stateMutability":"nonpayable","type":"function"}
	]`
)

var (
	deployToStrategyABI abi.ABI
	deployLiquidityABI  abi.ABI
)

func init() {
	parsed, err := abi.JSON(strings.NewReader(deployToStrategyABIJSON))
	if err != nil {
		panic("failed to parse deployToStrategy ABI: " + err.Error())
	}
	deployToStrategyABI = parsed

	parsed, err = abi.JSON(strings.NewReader(deployLiquidityABIJSON))
	if err != nil {
		panic("failed to parse deployLiquidity ABI: " + err.Error())
	}
	deployLiquidityABI = parsed
}

// ChainBalanceSource derives funding balances from the capital ledger's
// balance reader. Reserve figures are the vault's unallocated capital.
type ChainBalanceSource struct {
	reader     ledger.BalanceReader
	baseToken  string
	quoteToken string
	logger     zerolog.Logger
}

// NewChainBalanceSource constructs a funding balance source for one pair.
func NewChainBalanceSource(reader ledger.BalanceReader, baseToken, quoteToken string, logger zerolog.Logger) *ChainBalanceSource {
	return &ChainBalanceSource{
		reader:     reader,
		baseToken:  baseToken,
		quoteToken: quoteToken,
		logger:     logger.With().Str("component", "deploy_balances").Logger(),
	}
}

// FundingBalances performs the four tier reads a gap evaluation needs.
// Individual failed reads degrade to unresolved (nil) so the gap
// arithmetic stays conservative; a source with no resolved read at all
// errors out.
func (s *ChainBalanceSource) FundingBalances(ctx context.Context) (Balances, error) {
	var bal Balances
	resolved := 0

	read := func(name string, target **big.Int, fn func() (*big.Int, error)) {
		v, err := fn()
		if err != nil {
			s.logger.Warn().Err(err).Str("read", name).Msg("funding balance unresolved, treating as zero")
			return
		}
		*target = v
		resolved++
	}

	read("reserve_base", &bal.ReserveBase, func() (*big.Int, error) { return s.vaultAvailable(ctx, s.baseToken) })
	read("reserve_quote", &bal.ReserveQuote, func() (*big.Int, error) { return s.vaultAvailable(ctx, s.quoteToken) })
	read("operating_base", &bal.OperatingBase, func() (*big.Int, error) { return s.reader.StrategyBalance(ctx, s.baseToken) })
	read("operating_quote", &bal.OperatingQuote, func() (*big.Int, error) { return s.reader.StrategyBalance(ctx, s.quoteToken) })

	if resolved == 0 {
		return Balances{}, fmt.Errorf("no funding balance read resolved")
	}
	return bal, nil
}

func (s *ChainBalanceSource) vaultAvailable(ctx context.Context, tokenAddr string) (*big.Int, error) {
	total, err := s.reader.VaultBalance(ctx, tokenAddr)
	if err != nil {
		return nil, err
	}
	deployed, err := s.reader.DeployedCapital(ctx, tokenAddr)
	if err != nil {
		return nil, err
	}
	available := new(big.Int).Sub(total, deployed)
	if available.Sign() < 0 {
		available.SetInt64(0)
	}
	return available, nil
}

var _ BalanceSource = (*ChainBalanceSource)(nil)

// ChainSubmitter signs and submits funding and deployment transactions.
type ChainSubmitter struct {
	client      *chain.Client
	signer      *chain.Signer
	vault       common.Address
	strategy    common.Address
	baseToken   common.Address
	quoteToken  common.Address
	pairID      common.Hash
	confirmWait time.Duration
}

// NewChainSubmitter constructs a submitter for one deployment target.
func NewChainSubmitter(client *chain.Client, signer *chain.Signer, vault, strategy, baseToken, quoteToken, pairID string, confirmWait time.Duration) *ChainSubmitter {
	return &ChainSubmitter{
		client:      client,
		signer:      signer,
		vault:       common.HexToAddress(vault),
		strategy:    common.HexToAddress(strategy),
		baseToken:   common.HexToAddress(baseToken),
		quoteToken:  common.HexToAddress(quoteToken),
		pairID:      common.HexToHash(pairID),
		confirmWait: confirmWait,
	}
}

// FundStrategy submits a vault deployToStrategy call for one asset.
func (s *ChainSubmitter) FundStrategy(ctx context.Context, asset Asset, amount *big.Int) (string, error) {
	tokenAddr := s.baseToken
	if asset == AssetQuote {
		tokenAddr = s.quoteToken
	}

	calldata, err := deployToStrategyABI.Pack("deployToStrategy", s.strategy, tokenAddr, amount, s.pairID)
	if err != nil {
		return "", fmt.Errorf("pack deployToStrategy: %w", err)
	}

	txHash, err := s.client.Submit(ctx, s.signer, s.vault, calldata)
	if err != nil {
		return "", err
	}
	return txHash.Hex(), nil
}

// DeployLiquidity submits the strategy's deployLiquidity call.
func (s *ChainSubmitter) DeployLiquidity(ctx context.Context, req Request) (string, error) {
	base := req.BaseAmount
	if base == nil {
		base = new(big.Int)
	}
	quote := req.QuoteAmount
	if quote == nil {
		quote = new(big.Int)
	}

	calldata, err := deployLiquidityABI.Pack("deployLiquidity", common.HexToHash(req.PairID), base, quote, int16(req.CenterTick))
	if err != nil {
		return "", fmt.Errorf("pack deployLiquidity: %w", err)
	}

	txHash, err := s.client.Submit(ctx, s.signer, s.strategy, calldata)
	if err != nil {
		return "", err
	}
	return txHash.Hex(), nil
}

// Await blocks until the transaction confirms or the wait budget expires.
// A mined-but-reverted receipt is a failure.
func (s *ChainSubmitter) Await(ctx context.Context, txHash string) error {
	receipt, err := s.client.WaitMined(ctx, common.HexToHash(txHash), s.confirmWait)
	if err != nil {
		return fmt.Errorf("confirmation wait: %w", err)
	}
	if receipt.Status != 1 {
		return fmt.Errorf("transaction reverted in block %d", receipt.BlockNumber.Uint64())
	}
	return nil
}

var _ Submitter = (*ChainSubmitter)(nil)
