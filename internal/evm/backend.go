package evm

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"liquidityZap/internal/chain"
)

// Backend executes contract calls and signed transactions for a single
// account. Reverted transactions surface as errors after mining.
type Backend struct {
	client  *chain.Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	signer  types.Signer
	logger  *zap.Logger
}

// NewBackend builds a backend for the given account key. An empty key yields
// a read-only backend that can call but not transact.
func NewBackend(ctx context.Context, client *chain.Client, privateKeyHex string, logger *zap.Logger) (*Backend, error) {
	var (
		key  *ecdsa.PrivateKey
		from common.Address
	)
	if privateKeyHex != "" {
		var err error
		key, err = crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		from = crypto.PubkeyToAddress(key.PublicKey)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Backend{
		client:  client,
		key:     key,
		from:    from,
		chainID: chainID,
		signer:  types.LatestSignerForChainID(chainID),
		logger:  logger,
	}, nil
}

// From is the account holding custody of funds during operations.
func (b *Backend) From() common.Address {
	return b.from
}

// call performs an eth_call and unpacks the result.
func (b *Backend) call(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	msg := ethereum.CallMsg{From: b.from, To: &to, Data: data}
	resp, err := b.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

// transact signs and submits a contract transaction and waits for its
// receipt. A reverted transaction is an error.
func (b *Backend) transact(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) (*types.Receipt, error) {
	if b.key == nil {
		return nil, errors.New("no signing key configured")
	}

	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	nonce, err := b.client.PendingNonceAt(ctx, b.from)
	if err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	gasPrice, err := b.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas price: %w", err)
	}
	gasLimit, err := b.client.EstimateGas(ctx, ethereum.CallMsg{From: b.from, To: &to, Data: data})
	if err != nil {
		return nil, fmt.Errorf("estimate gas for %s: %w", method, err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := types.SignTx(tx, b.signer, b.key)
	if err != nil {
		return nil, fmt.Errorf("sign %s: %w", method, err)
	}

	if err := b.client.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("send %s: %w", method, err)
	}

	b.logger.Debug("transaction sent",
		zap.String("method", method),
		zap.String("to", to.Hex()),
		zap.String("tx", signed.Hash().Hex()),
	)

	receipt, err := b.client.WaitMined(ctx, signed.Hash())
	if err != nil {
		return nil, fmt.Errorf("wait %s: %w", method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%s reverted in tx %s", method, signed.Hash().Hex())
	}
	return receipt, nil
}
