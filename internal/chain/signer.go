package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer holds the operator key used to sign console-submitted transactions.
type Signer struct {
	key  *ecdsa.PrivateKey
	from common.Address
}

// NewSigner parses a hex-encoded private key.
func NewSigner(hexKey string) (*Signer, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if trimmed == "" {
		return nil, errors.New("signing key not configured")
	}
	key, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}
	return &Signer{key: key, from: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// From returns the signing account's address.
func (s *Signer) From() common.Address {
	return s.from
}

// Submit signs and broadcasts a contract call, returning the transaction
// hash. Gas price and limit are taken from the node; the gas limit gets a
// fixed headroom margin on top of the estimate.
func (c *Client) Submit(ctx context.Context, signer *Signer, to common.Address, calldata []byte) (common.Hash, error) {
	if signer == nil {
		return common.Hash{}, errors.New("no signer configured")
	}

	chainID, err := c.ChainID(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("resolve chain id: %w", err)
	}

	nonce, err := c.PendingNonceAt(ctx, signer.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("resolve nonce: %w", err)
	}

	gasPrice, err := c.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("suggest gas price: %w", err)
	}

	gasLimit, err := c.EstimateGas(ctx, ethereum.CallMsg{
		From: signer.from,
		To:   &to,
		Data: calldata,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("estimate gas: %w", err)
	}
	gasLimit += gasLimit / 5

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    new(big.Int),
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     calldata,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), signer.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}

	if err := c.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}

	c.logger.Info().Str("tx", signed.Hash().Hex()).Str("to", to.Hex()).Msg("transaction submitted")
	return signed.Hash(), nil
}
