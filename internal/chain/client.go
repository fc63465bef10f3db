package chain

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// Options parameterise the chain client.
type Options struct {
	RPCURL         string
	RequestTimeout time.Duration
}

// Client wraps an Ethereum RPC connection with the read/write helpers the
// console needs: contract calls, log range queries, and transaction
// submission with receipt tracking.
type Client struct {
	opts      Options
	logger    zerolog.Logger
	client    *ethclient.Client
	clientMux sync.Mutex
}

// NewClient builds a chain client. The RPC connection is dialled lazily on
// first use.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	return &Client{opts: opts, logger: logger.With().Str("component", "chain").Logger()}
}

// Close releases the underlying RPC connection if one was dialled.
func (c *Client) Close() {
	c.clientMux.Lock()
	defer c.clientMux.Unlock()
	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
}

func (c *Client) getClient(ctx context.Context) (*ethclient.Client, error) {
	c.clientMux.Lock()
	defer c.clientMux.Unlock()

	if c.client != nil {
		return c.client, nil
	}
	if c.opts.RPCURL == "" {
		return nil, errors.New("chain rpc url not configured")
	}

	client, err := ethclient.DialContext(ctx, c.opts.RPCURL)
	if err != nil {
		return nil, err
	}
	c.client = client
	return client, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := c.opts.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// ChainID returns the connected chain's identifier.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.ChainID(ctx)
}

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return 0, err
	}
	return client.BlockNumber(ctx)
}

// Call packs a contract method, performs eth_call against the latest block,
// and unpacks the outputs.
func (c *Client) Call(ctx context.Context, contract common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	payload, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return nil, err
	}

	res, err := client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: payload}, nil)
	if err != nil {
		return nil, err
	}
	return parsed.Unpack(method, res)
}

// FilterLogs runs a topic0-filtered log range query against one contract.
func (c *Client) FilterLogs(ctx context.Context, contract common.Address, topic0 common.Hash, fromBlock, toBlock uint64) ([]types.Log, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return nil, err
	}

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{contract},
		Topics:    [][]common.Hash{{topic0}},
	}
	return client.FilterLogs(ctx, query)
}

// SuggestGasPrice returns the node's gas price estimate.
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.SuggestGasPrice(ctx)
}

// PendingNonceAt returns the next nonce for an account.
func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return 0, err
	}
	return client.PendingNonceAt(ctx, account)
}

// EstimateGas estimates gas for a call message.
func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return 0, err
	}
	return client.EstimateGas(ctx, msg)
}

// SendTransaction broadcasts a signed transaction.
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return err
	}
	return client.SendTransaction(ctx, tx)
}

// WaitMined polls for a transaction receipt until it appears, the wait
// budget is exhausted, or ctx is cancelled. The wait budget bounds hung
// confirmations so callers can fail over instead of suspending forever.
func (c *Client) WaitMined(ctx context.Context, txHash common.Hash, wait time.Duration) (*types.Receipt, error) {
	if wait <= 0 {
		wait = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	client, err := c.getClient(ctx)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		receipt, err := client.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			c.logger.Debug().Err(err).Str("tx", txHash.Hex()).Msg("receipt poll failed, retrying")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
