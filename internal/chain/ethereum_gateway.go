// Package chain 实现基于 EVM 兼容链的支付网关
//
// 网关用本地私钥签名原生代币转账（EIP-155 legacy 交易），
// 通过 JSON-RPC 节点广播并等待交易被打包。
package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/decker502/garden/pkg/game"
	"github.com/decker502/garden/pkg/types"
)

// transferGasLimit 普通转账的固定 gas 用量
const transferGasLimit = 21000

// EthClient 网关使用的 JSON-RPC 方法子集（*ethclient.Client 满足该接口）
type EthClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	bind.DeployBackend
}

// EthereumGateway 以太坊支付网关，实现 game.PaymentGateway
type EthereumGateway struct {
	client  EthClient
	key     *ecdsa.PrivateKey
	address common.Address
}

// Dial 连接 JSON-RPC 节点
func Dial(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}
	return client, nil
}

// NewEthereumGateway 创建网关
//
// 参数：
//   - client: JSON-RPC 客户端
//   - privateKeyHex: 付款钱包私钥（十六进制，可带 0x 前缀）
//
// 返回：
//   - *EthereumGateway: 网关实例
//   - error: 私钥格式非法时返回错误
func NewEthereumGateway(client EthClient, privateKeyHex string) (*EthereumGateway, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	address := crypto.PubkeyToAddress(key.PublicKey)
	log.Printf("[EthereumGateway] Wallet %s ready", address.Hex())
	return &EthereumGateway{
		client:  client,
		key:     key,
		address: address,
	}, nil
}

// Address 返回网关签名钱包的地址
func (g *EthereumGateway) Address() string {
	return g.address.Hex()
}

// SubmitTransfer 签名并广播转账，等待交易被打包
//
// 付款地址必须是网关私钥对应的地址，否则视为签名被拒绝。
// 交易执行失败（receipt status 为 0）同样返回错误。
func (g *EthereumGateway) SubmitTransfer(ctx context.Context, req game.TransferRequest) (*game.TransferConfirmation, error) {
	if !common.IsHexAddress(req.From) || common.HexToAddress(req.From) != g.address {
		return nil, externalCallError("sign transfer", fmt.Errorf("wallet %s cannot sign for %s", g.address.Hex(), req.From))
	}
	if !common.IsHexAddress(req.To) {
		return nil, externalCallError("submit transfer", fmt.Errorf("invalid recipient address %q", req.To))
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return nil, externalCallError("submit transfer", fmt.Errorf("amount must be positive"))
	}

	tx, err := g.signTransfer(ctx, common.HexToAddress(req.To), req.Amount)
	if err != nil {
		return nil, err
	}

	if err := g.client.SendTransaction(ctx, tx); err != nil {
		return nil, externalCallError("send transaction", err)
	}
	log.Printf("[EthereumGateway] Sent tx %s: %s -> %s value=%s wei", tx.Hash().Hex(), req.From, req.To, req.Amount)

	receipt, err := bind.WaitMined(ctx, g.client, tx)
	if err != nil {
		return nil, externalCallError("wait for confirmation", err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return nil, externalCallError("transfer", fmt.Errorf("transaction %s reverted", tx.Hash().Hex()))
	}

	var block uint64
	if receipt.BlockNumber != nil {
		block = receipt.BlockNumber.Uint64()
	}
	return &game.TransferConfirmation{
		TxHash:      tx.Hash().Hex(),
		BlockNumber: block,
		ConfirmedAt: time.Now(),
	}, nil
}

// signTransfer 构造并签名 legacy 转账交易
func (g *EthereumGateway) signTransfer(ctx context.Context, to common.Address, amount *big.Int) (*ethtypes.Transaction, error) {
	chainID, err := g.client.ChainID(ctx)
	if err != nil {
		return nil, externalCallError("chain id", err)
	}
	nonce, err := g.client.PendingNonceAt(ctx, g.address)
	if err != nil {
		return nil, externalCallError("pending nonce", err)
	}
	gasPrice, err := g.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, externalCallError("gas price", err)
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    new(big.Int).Set(amount),
		Gas:      transferGasLimit,
		GasPrice: gasPrice,
	})

	signed, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(chainID), g.key)
	if err != nil {
		return nil, externalCallError("sign transfer", err)
	}
	return signed, nil
}

// Balance 查询地址的最新余额（wei）
func (g *EthereumGateway) Balance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, externalCallError("balance", fmt.Errorf("invalid address %q", address))
	}

	balance, err := g.client.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, externalCallError("balance", err)
	}
	return balance, nil
}

func externalCallError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", types.ErrExternalCallFailed, op, err)
}

// 编译期检查
var _ game.PaymentGateway = (*EthereumGateway)(nil)
