package game

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/decker502/garden/pkg/types"
)

// TransferRequest 原生代币转账请求
type TransferRequest struct {
	From   string   // 付款钱包地址
	To     string   // 收款地址
	Amount *big.Int // 金额（wei）
}

// TransferConfirmation 已确认的转账
type TransferConfirmation struct {
	TxHash      string
	BlockNumber uint64
	ConfirmedAt time.Time
}

// PaymentGateway 支付网关
//
// SubmitTransfer 提交一笔转账并等待确认。调用可能耗时很长，
// 调用方不能持有游戏状态锁等待结果；确认后再根据当前状态决定是否生效。
// 网关不会自动重试，失败时返回的错误满足 errors.Is(err, types.ErrExternalCallFailed)。
type PaymentGateway interface {
	SubmitTransfer(ctx context.Context, req TransferRequest) (*TransferConfirmation, error)
	Balance(ctx context.Context, address string) (*big.Int, error)
}

// externalCallError 将网关错误包装为外部调用失败
func externalCallError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", types.ErrExternalCallFailed, op, err)
}

// FakeGateway 内存中的支付网关
// 用于测试和离线演示（--fake-wallet），转账立即确认
type FakeGateway struct {
	mu        sync.Mutex
	balances  map[string]*big.Int
	transfers []TransferRequest
	block     uint64

	// FailWith 非 nil 时所有转账都以该错误失败
	FailWith error
	// OnSubmit 在确认前回调（在网关锁之外调用），测试用它模拟等待确认期间的状态变化
	OnSubmit func(TransferRequest)
}

// NewFakeGateway 创建内存支付网关
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{balances: make(map[string]*big.Int)}
}

// SetBalance 设置地址余额（wei）
func (g *FakeGateway) SetBalance(address string, wei *big.Int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.balances[strings.ToLower(address)] = new(big.Int).Set(wei)
}

// Transfers 返回已确认的转账记录
func (g *FakeGateway) Transfers() []TransferRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]TransferRequest, len(g.transfers))
	copy(out, g.transfers)
	return out
}

// SubmitTransfer 实现 PaymentGateway
func (g *FakeGateway) SubmitTransfer(ctx context.Context, req TransferRequest) (*TransferConfirmation, error) {
	if err := ctx.Err(); err != nil {
		return nil, externalCallError("submit transfer", err)
	}
	if req.Amount == nil || req.Amount.Sign() < 0 {
		return nil, externalCallError("submit transfer", fmt.Errorf("invalid amount"))
	}

	g.mu.Lock()
	failWith, onSubmit := g.FailWith, g.OnSubmit
	g.mu.Unlock()

	if failWith != nil {
		return nil, externalCallError("submit transfer", failWith)
	}
	if onSubmit != nil {
		onSubmit(req)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	from := strings.ToLower(req.From)
	balance := g.balances[from]
	if balance == nil || balance.Cmp(req.Amount) < 0 {
		return nil, externalCallError("submit transfer", fmt.Errorf("insufficient funds for %s", req.From))
	}

	g.balances[from] = new(big.Int).Sub(balance, req.Amount)
	to := strings.ToLower(req.To)
	if g.balances[to] == nil {
		g.balances[to] = new(big.Int)
	}
	g.balances[to] = new(big.Int).Add(g.balances[to], req.Amount)

	g.transfers = append(g.transfers, TransferRequest{From: req.From, To: req.To, Amount: new(big.Int).Set(req.Amount)})
	g.block++
	return &TransferConfirmation{
		TxHash:      "0x" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		BlockNumber: g.block,
		ConfirmedAt: time.Now(),
	}, nil
}

// Balance 实现 PaymentGateway
func (g *FakeGateway) Balance(ctx context.Context, address string) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, externalCallError("balance", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if b, ok := g.balances[strings.ToLower(address)]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}
