package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/decker502/garden/pkg/components"
	"github.com/decker502/garden/pkg/config"
	"github.com/decker502/garden/pkg/systems"
	"github.com/decker502/garden/pkg/types"
)

// SessionDeps 会话依赖
type SessionDeps struct {
	Profiles *ProfileStore    // 档案存储（必需）
	Saves    *GardenSaveStore // 花园快照存储，可为 nil（不保存）
	Gateway  PaymentGateway   // 支付网关，可为 nil（无法购买杀虫剂）
	Clock    func() time.Time // 时钟，nil 时使用 time.Now
}

// PesticidePurchase 杀虫剂购买结果
type PesticidePurchase struct {
	Confirmation *TransferConfirmation
	Treated      int // 确认后施药的植物数
}

// GardenSession 一局花园游戏的会话上下文
//
// 职责：
//   - 持有花园状态，所有状态变化（tick 和玩家操作）都经过会话串行化
//   - 变化后同步档案统计和成就，并保存花园快照
//   - 杀虫剂购买：在锁外等待支付确认，确认后按当前状态重新校验再生效
//
// 会话由调用方显式创建和关闭（Close），不存在全局单例。
type GardenSession struct {
	mu       sync.Mutex
	cfg      *config.GardenConfig
	state    components.GardenState
	profiles *ProfileStore
	saves    *GardenSaveStore
	gateway  PaymentGateway
	now      func() time.Time

	purchasing bool
	lastReport systems.TickReport

	balances singleflight.Group // 同一地址的并发余额查询合并为一次网关调用
}

// NewGardenSession 创建会话
//
// 如果存在属于当前档案的花园快照则恢复，否则从第一关的空花园开始。
//
// 参数：
//   - cfg: 花园配置
//   - deps: 依赖
func NewGardenSession(cfg *config.GardenConfig, deps SessionDeps) *GardenSession {
	s := &GardenSession{
		cfg:      cfg,
		profiles: deps.Profiles,
		saves:    deps.Saves,
		gateway:  deps.Gateway,
		now:      deps.Clock,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.profiles == nil {
		s.profiles = NewProfileStore(nil)
	}

	s.state = components.NewGardenState(cfg.Levels.First().ID, cfg.Rules.QuotaPeriod(s.now()))
	s.restore()
	return s
}

// restore 恢复属于当前档案的快照
func (s *GardenSession) restore() {
	if s.saves == nil {
		return
	}

	save, err := s.saves.Load()
	if err != nil {
		log.Printf("[GardenSession] Warning: Failed to load garden save: %v (starting fresh)", err)
		return
	}
	if save == nil {
		return
	}
	if save.OwnerID != s.ownerID() {
		log.Printf("[GardenSession] Garden save belongs to another profile, starting fresh")
		return
	}
	if _, ok := s.cfg.Levels.Get(save.State.LevelID); !ok {
		log.Printf("[GardenSession] Warning: Garden save has unknown level %d, starting fresh", save.State.LevelID)
		return
	}

	s.state = save.State.Clone()
	if s.state.Plants == nil {
		s.state.Plants = []components.Plant{}
	}
}

func (s *GardenSession) ownerID() string {
	if p := s.profiles.CurrentUser(); p != nil {
		return p.ID
	}
	return ""
}

// Config 返回花园配置
func (s *GardenSession) Config() *config.GardenConfig {
	return s.cfg
}

// Profiles 返回档案存储
func (s *GardenSession) Profiles() *ProfileStore {
	return s.profiles
}

// Snapshot 返回当前花园状态的副本
func (s *GardenSession) Snapshot() components.GardenState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Level 返回当前关卡
func (s *GardenSession) Level() config.GameLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Level(s.state.LevelID)
}

// RemainingWater 返回当前周期剩余浇水额度
func (s *GardenSession) RemainingWater() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return systems.RemainingWater(s.state, s.now(), s.cfg)
}

// LastTickReport 返回最近一次 tick 的摘要
func (s *GardenSession) LastTickReport() systems.TickReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}

// Tick 推进一次模拟
func (s *GardenSession) Tick(now time.Time) systems.TickReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, report := systems.Tick(s.state, now, s.cfg)
	s.lastReport = report
	s.commitLocked(next, now)

	if report.LevelUp != nil {
		log.Printf("[GardenSession] Tick level up -> %s", report.LevelUp.To.Name)
	}
	return report
}

// Water 给植物浇水
func (s *GardenSession) Water(plantID string) (*systems.LevelUp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next, up, err := systems.Water(s.state, plantID, now, s.cfg)
	if err != nil {
		return nil, err
	}
	s.commitLocked(next, now)
	return up, nil
}

// ApplyPesticide 给植物施药
func (s *GardenSession) ApplyPesticide(plantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next, err := systems.ApplyPesticide(s.state, plantID, now, s.cfg)
	if err != nil {
		return err
	}
	s.commitLocked(next, now)
	return nil
}

// AddPlant 种植
func (s *GardenSession) AddPlant(plantType types.PlantType) (components.Plant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next, plant, err := systems.AddPlant(s.state, plantType, now, s.cfg)
	if err != nil {
		return components.Plant{}, err
	}
	s.commitLocked(next, now)
	log.Printf("[GardenSession] Planted %s (%s)", plant.Type, plant.ID)
	return plant, nil
}

// BuyWater 补充浇水额度
func (s *GardenSession) BuyWater() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next, err := systems.BuyWater(s.state, now, s.cfg)
	if err != nil {
		return err
	}
	s.commitLocked(next, now)
	return nil
}

// BuyPesticide 购买杀虫剂
//
// 流程：
//  1. 校验前置条件（网关、收款地址、已登录且连接钱包、杀虫剂已解锁、没有进行中的购买）
//  2. 在锁外提交转账并等待确认
//  3. 确认后按当前状态重新校验（仍是同一钱包登录），对所有需要杀虫剂的植物施药
//
// 转账失败时状态不变，返回 ErrExternalCallFailed。
func (s *GardenSession) BuyPesticide(ctx context.Context) (*PesticidePurchase, error) {
	req, err := s.beginPurchase()
	if err != nil {
		return nil, err
	}

	confirmation, err := s.gateway.SubmitTransfer(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchasing = false

	if err != nil {
		if !errors.Is(err, types.ErrExternalCallFailed) {
			err = externalCallError("submit transfer", err)
		}
		log.Printf("[GardenSession] Pesticide purchase failed: %v", err)
		return nil, err
	}

	purchase := &PesticidePurchase{Confirmation: confirmation}
	log.Printf("[GardenSession] Pesticide payment confirmed: tx=%s block=%d", confirmation.TxHash, confirmation.BlockNumber)

	// 等待确认期间玩家可能已登出或切换钱包
	current := s.profiles.CurrentUser()
	if current == nil || !strings.EqualFold(current.WalletAddress, req.From) {
		return purchase, fmt.Errorf("payment %s confirmed but %w", confirmation.TxHash, types.ErrWalletNotConnected)
	}

	now := s.now()
	next, treated, err := systems.TreatInfestedPlants(s.state, now, s.cfg)
	if err != nil {
		return purchase, err
	}
	purchase.Treated = treated
	s.commitLocked(next, now)
	return purchase, nil
}

// beginPurchase 校验购买前置条件并标记购买进行中
func (s *GardenSession) beginPurchase() (TransferRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gateway == nil {
		return TransferRequest{}, types.ErrNoPaymentGateway
	}
	if s.cfg.Rules.Treasury == "" {
		return TransferRequest{}, fmt.Errorf("%w: treasury address not set", types.ErrNoPaymentGateway)
	}
	profile := s.profiles.CurrentUser()
	if profile == nil {
		return TransferRequest{}, types.ErrNotSignedIn
	}
	if profile.WalletAddress == "" {
		return TransferRequest{}, types.ErrWalletNotConnected
	}
	if !s.cfg.Level(s.state.LevelID).PesticideUnlocked {
		return TransferRequest{}, types.ErrPesticideLocked
	}
	if s.purchasing {
		return TransferRequest{}, types.ErrPurchaseInProgress
	}

	s.purchasing = true
	return TransferRequest{
		From:   profile.WalletAddress,
		To:     s.cfg.Rules.Treasury,
		Amount: s.cfg.Rules.PesticidePriceWei(),
	}, nil
}

// WalletBalance 查询当前钱包余额（wei）
func (s *GardenSession) WalletBalance(ctx context.Context) (*big.Int, error) {
	if s.gateway == nil {
		return nil, types.ErrNoPaymentGateway
	}
	profile := s.profiles.CurrentUser()
	if profile == nil {
		return nil, types.ErrNotSignedIn
	}
	if profile.WalletAddress == "" {
		return nil, types.ErrWalletNotConnected
	}

	address := strings.ToLower(profile.WalletAddress)
	v, err, _ := s.balances.Do(address, func() (any, error) {
		return s.gateway.Balance(ctx, profile.WalletAddress)
	})
	if err != nil {
		if !errors.Is(err, types.ErrExternalCallFailed) {
			err = externalCallError("balance", err)
		}
		return nil, err
	}
	// 调用方之间共享结果，返回副本
	balance, _ := v.(*big.Int)
	if balance == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(balance), nil
}

// Close 保存最终快照
func (s *GardenSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saves == nil {
		return nil
	}
	return s.saves.Save(s.ownerID(), s.state, s.now())
}

// commitLocked 提交新状态：同步档案统计和成就，保存快照
// 调用方必须持有锁
func (s *GardenSession) commitLocked(next components.GardenState, now time.Time) {
	s.state = next
	s.syncProfileLocked(now)

	if s.saves != nil {
		if err := s.saves.Save(s.ownerID(), s.state, now); err != nil {
			log.Printf("[GardenSession] Warning: Failed to save garden: %v", err)
		}
	}
}

func (s *GardenSession) syncProfileLocked(now time.Time) {
	profile := s.profiles.CurrentUser()
	if profile == nil {
		return
	}

	stats := profile.GameStats
	totalPlants := max(stats.TotalPlants, len(s.state.Plants))
	highestLevel := max(stats.HighestLevel, s.state.LevelID)
	totalScore := max(stats.TotalScore, s.state.Score)
	if totalPlants != stats.TotalPlants || highestLevel != stats.HighestLevel || totalScore != stats.TotalScore {
		if err := s.profiles.UpdateStats(StatsUpdate{
			TotalPlants:  &totalPlants,
			HighestLevel: &highestLevel,
			TotalScore:   &totalScore,
		}); err != nil {
			log.Printf("[GardenSession] Warning: Failed to update stats: %v", err)
		}
	}

	for _, id := range systems.EarnedAchievements(s.state, now, s.cfg) {
		if profile.HasAchievement(id) {
			continue
		}
		if _, err := s.profiles.AddAchievement(id); err != nil {
			log.Printf("[GardenSession] Warning: Failed to add achievement %s: %v", id, err)
		}
	}
}
