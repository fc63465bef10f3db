package activity

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"tempovault-console/internal/token"
)

// Event signatures emitted by the treasury vault.
var (
	depositedTopic       = crypto.Keccak256Hash([]byte("Deposited(uint256,address,uint256,address,uint256)"))
	withdrawnTopic       = crypto.Keccak256Hash([]byte("Withdrawn(uint256,address,uint256,address,uint256)"))
	capitalDeployedTopic = crypto.Keccak256Hash([]byte("CapitalDeployed(uint256,uint256,address,address,uint256,bytes32)"))
)

// LogSource is the slice of the chain client the reconstructor needs.
type LogSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, contract common.Address, topic0 common.Hash, fromBlock, toBlock uint64) ([]types.Log, error)
}

// Reconstructor rebuilds a unified activity timeline from the vault's
// heterogeneous event records. Each refresh recomputes the sequence
// wholesale over a trailing block window; a failed refresh keeps the
// previous sequence visible as stale instead of clearing it.
type Reconstructor struct {
	source   LogSource
	registry *token.Registry
	vault    common.Address
	window   uint64
	logger   zerolog.Logger

	mu        sync.RWMutex
	current   []Record
	refreshed time.Time
	stale     bool
}

// NewReconstructor builds a reconstructor over a trailing window of blocks.
func NewReconstructor(source LogSource, registry *token.Registry, vault string, window uint64, logger zerolog.Logger) *Reconstructor {
	return &Reconstructor{
		source:   source,
		registry: registry,
		vault:    common.HexToAddress(vault),
		window:   window,
		logger:   logger.With().Str("component", "activity").Logger(),
	}
}

// Current returns the last successfully reconstructed sequence, when it was
// built, and whether a refresh has failed since.
func (r *Reconstructor) Current() ([]Record, time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.refreshed, r.stale
}

// Refresh recomputes the timeline. On failure the previous sequence stays
// in place and is returned alongside the error.
func (r *Reconstructor) Refresh(ctx context.Context) ([]Record, error) {
	records, err := r.reconstruct(ctx)
	if err != nil {
		r.mu.Lock()
		r.stale = true
		previous := r.current
		r.mu.Unlock()
		return previous, err
	}

	r.mu.Lock()
	r.current = records
	r.refreshed = time.Now().UTC()
	r.stale = false
	r.mu.Unlock()
	return records, nil
}

func (r *Reconstructor) reconstruct(ctx context.Context) ([]Record, error) {
	head, err := r.source.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("read head block: %w", err)
	}

	fromBlock := uint64(0)
	if head > r.window {
		fromBlock = head - r.window
	}

	var deposits, withdrawals, deployments []types.Log
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		deposits, err = r.source.FilterLogs(gctx, r.vault, depositedTopic, fromBlock, head)
		return err
	})
	g.Go(func() error {
		var err error
		withdrawals, err = r.source.FilterLogs(gctx, r.vault, withdrawnTopic, fromBlock, head)
		return err
	})
	g.Go(func() error {
		var err error
		deployments, err = r.source.FilterLogs(gctx, r.vault, capitalDeployedTopic, fromBlock, head)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch vault logs: %w", err)
	}

	records := make([]Record, 0, len(deposits)+len(withdrawals)+len(deployments))
	for _, log := range deposits {
		if rec, ok := r.normalizeTransfer(log, KindDeposit); ok {
			records = append(records, rec)
		}
	}
	for _, log := range withdrawals {
		if rec, ok := r.normalizeTransfer(log, KindWithdraw); ok {
			records = append(records, rec)
		}
	}
	for _, log := range deployments {
		if rec, ok := r.normalizeDeployment(log); ok {
			records = append(records, rec)
		}
	}

	sort.Slice(records, func(i, j int) bool { return less(records[i], records[j]) })
	return records, nil
}

// normalizeTransfer maps a Deposited or Withdrawn log onto the common
// schema. Topics carry vaultId, token, and the counterparty; the first data
// word is the amount. A malformed log is dropped with a warning rather than
// failing the whole fetch.
func (r *Reconstructor) normalizeTransfer(log types.Log, kind Kind) (Record, bool) {
	if len(log.Topics) < 4 || len(log.Data) < 32 {
		r.logger.Warn().Str("tx", log.TxHash.Hex()).Msg("malformed transfer log dropped")
		return Record{}, false
	}

	tok := r.registry.Lookup(common.BytesToAddress(log.Topics[2].Bytes()).Hex())
	amount := wordToBig(log.Data, 0)
	counterparty := common.BytesToAddress(log.Topics[3].Bytes()).Hex()

	rec := Record{
		TxHash:      log.TxHash.Hex(),
		Kind:        kind,
		TokenSymbol: tok.Symbol,
		Amount:      token.ToDisplay(amount, tok.Decimals),
		BlockNumber: log.BlockNumber,
	}
	if kind == KindDeposit {
		rec.From = counterparty
		rec.To = r.vault.Hex()
	} else {
		rec.From = r.vault.Hex()
		rec.To = counterparty
	}
	return rec, true
}

// normalizeDeployment maps a CapitalDeployed log. The strategy address is
// the third topic; token and amount are the first two data words.
func (r *Reconstructor) normalizeDeployment(log types.Log) (Record, bool) {
	if len(log.Topics) < 4 || len(log.Data) < 64 {
		r.logger.Warn().Str("tx", log.TxHash.Hex()).Msg("malformed deployment log dropped")
		return Record{}, false
	}

	tok := r.registry.Lookup(common.BytesToAddress(log.Data[12:32]).Hex())
	amount := wordToBig(log.Data, 1)
	strategy := common.BytesToAddress(log.Topics[3].Bytes()).Hex()

	return Record{
		TxHash:      log.TxHash.Hex(),
		Kind:        KindCapitalDeployed,
		TokenSymbol: tok.Symbol,
		Amount:      token.ToDisplay(amount, tok.Decimals),
		From:        r.vault.Hex(),
		To:          strategy,
		BlockNumber: log.BlockNumber,
	}, true
}

func wordToBig(data []byte, word int) *big.Int {
	start := word * 32
	return new(big.Int).SetBytes(data[start : start+32])
}
