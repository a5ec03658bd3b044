package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"portfolio_rebalancer/internal/app/port"
	"portfolio_rebalancer/internal/domain/entity"
	"portfolio_rebalancer/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// EVMClient implements port.BlockchainClient for EVM-compatible chains.
// ZRC20 tokens on ZetaChain expose the ERC20 balanceOf and are read the same way.
type EVMClient struct {
	ethClient      *ethclient.Client
	chain          entity.ChainDefinition
	rpcCallTimeout time.Duration
	logger         *zap.Logger
}

// ERC20 ABI minimal part for balanceOf
const erc20ABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}]`

var (
	parsedERC20ABI  abi.ABI
	parsedERC20Once sync.Once
)

func initParsedERC20ABI() {
	parsedERC20Once.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
	})
}

// NewEVMClient dials the chain's RPC endpoints in order and keeps the first that connects.
func NewEVMClient(chain entity.ChainDefinition, connectionTimeout, rpcCallTimeout time.Duration, logger *zap.Logger) (*EVMClient, error) {
	initParsedERC20ABI()
	if len(chain.RPCURLs) == 0 {
		return nil, fmt.Errorf("no RPC endpoints configured for chain %s", chain.ChainID)
	}

	var lastErr error
	for _, rpcURL := range chain.RPCURLs {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		client, err := ethclient.DialContext(ctx, rpcURL)
		cancel()
		if err == nil {
			return &EVMClient{
				ethClient:      client,
				chain:          chain,
				rpcCallTimeout: rpcCallTimeout,
				logger:         logger.Named("EVMClient").With(zap.String("chainId", chain.ChainID)),
			}, nil
		}
		logger.Warn("RPC endpoint unreachable, trying next", zap.String("rpc", rpcURL), zap.Error(err))
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}
	return nil, fmt.Errorf("all RPC connection attempts failed for chain %s: %w", chain.ChainID, lastErr)
}

// ChainID implements port.BlockchainClient.
func (c *EVMClient) ChainID() string {
	return c.chain.ChainID
}

// GetBalances fetches multiple balances using one JSON-RPC batch request.
// A failed batch returns an error; a failed element only sets that result's Error.
func (c *EVMClient) GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	if len(requests) == 0 {
		return []entity.BalanceResultItem{}, nil
	}

	batchElems := make([]rpc.BatchElem, 0, len(requests))
	elemIndex := make([]int, 0, len(requests))
	results := make([]entity.BalanceResultItem, len(requests))

	for i, reqItem := range requests {
		results[i] = entity.BalanceResultItem{
			RequestID:    reqItem.ID,
			Asset:        reqItem.Asset,
			TokenAddress: reqItem.TokenAddress,
			CoinType:     reqItem.Asset.CoinType,
		}

		switch reqItem.Type {
		case entity.NativeBalanceRequest:
			batchElems = append(batchElems, rpc.BatchElem{
				Method: "eth_getBalance",
				Args:   []any{common.HexToAddress(reqItem.WalletAddress), "latest"},
				Result: new(hexutil.Big),
			})
		case entity.TokenBalanceRequest:
			callData, err := parsedERC20ABI.Pack("balanceOf", common.HexToAddress(reqItem.WalletAddress))
			if err != nil {
				results[i].Error = fmt.Errorf("failed to pack balanceOf for %s: %w", reqItem.Asset.Symbol, err)
				continue
			}
			callArgs := map[string]any{
				"to":   common.HexToAddress(reqItem.TokenAddress),
				"data": hexutil.Bytes(callData),
			}
			batchElems = append(batchElems, rpc.BatchElem{
				Method: "eth_call",
				Args:   []any{callArgs, "latest"},
				Result: new(hexutil.Bytes),
			})
		default:
			results[i].Error = fmt.Errorf("unknown balance request type: %v for %s", reqItem.Type, reqItem.Asset.Symbol)
			continue
		}
		elemIndex = append(elemIndex, i)
	}

	if len(batchElems) == 0 {
		return results, nil
	}

	rpcCallCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	c.logger.Debug("Sending balance batch", zap.Int("calls", len(batchElems)))
	if err := c.ethClient.Client().BatchCallContext(rpcCallCtx, batchElems); err != nil {
		c.logger.Error("RPC batch call failed", zap.Int("calls", len(batchElems)), zap.Error(err))
		return results, fmt.Errorf("RPC batch call failed on chain %s: %w", c.chain.ChainID, err)
	}

	for k, elem := range batchElems {
		i := elemIndex[k]
		req := requests[i]
		if elem.Error != nil {
			results[i].Error = fmt.Errorf("failed to fetch %s at %s: %w", req.Asset.Symbol, req.TokenAddress, elem.Error)
			continue
		}

		switch req.Type {
		case entity.NativeBalanceRequest:
			result, ok := elem.Result.(*hexutil.Big)
			if !ok || result == nil {
				results[i].Error = fmt.Errorf("failed to decode native balance for %s", req.Asset.Symbol)
				continue
			}
			results[i].Balance = new(big.Int).Set((*big.Int)(result))
		case entity.TokenBalanceRequest:
			balance, err := decodeBalanceOf(elem.Result)
			if err != nil {
				results[i].Error = fmt.Errorf("failed to decode balanceOf for %s: %w", req.Asset.Symbol, err)
				continue
			}
			results[i].Balance = balance
		}
		results[i].FormattedBalance = utils.FormatBigInt(results[i].Balance, req.Asset.Decimals)
	}
	return results, nil
}

func decodeBalanceOf(raw any) (*big.Int, error) {
	result, ok := raw.(*hexutil.Bytes)
	if !ok || result == nil {
		return nil, fmt.Errorf("unexpected result type %T", raw)
	}
	// Calls to accounts without code return empty data.
	if len(*result) == 0 {
		return big.NewInt(0), nil
	}
	unpacked, err := parsedERC20ABI.Unpack("balanceOf", *result)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", hexutil.Encode(*result), err)
	}
	if len(unpacked) == 0 {
		return nil, fmt.Errorf("balanceOf returned no data")
	}
	balance, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf returned %T", unpacked[0])
	}
	return balance, nil
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	c.ethClient.Close()
}

var _ port.BlockchainClient = (*EVMClient)(nil)
