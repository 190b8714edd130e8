package game

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/decker502/garden/pkg/types"
)

// GameStats 玩家的累计统计
type GameStats struct {
	TotalPlants  int      `yaml:"totalPlants"`  // 累计种植数
	HighestLevel int      `yaml:"highestLevel"` // 到达过的最高关卡
	TotalScore   int      `yaml:"totalScore"`   // 累计得分
	Achievements []string `yaml:"achievements"` // 已获得的成就ID（去重）
}

// UserProfile 玩家档案
// 每个存储槽最多保存一份档案
type UserProfile struct {
	ID            string    `yaml:"id"`
	Username      string    `yaml:"username"` // 邮箱 @ 之前的部分
	Email         string    `yaml:"email"`
	WalletAddress string    `yaml:"walletAddress"`
	CreatedAt     time.Time `yaml:"createdAt"`
	LastLogin     time.Time `yaml:"lastLogin"`
	GameStats     GameStats `yaml:"gameStats"`
}

// clone 返回深拷贝，调用方修改返回值不会影响存储中的档案
func (p *UserProfile) clone() *UserProfile {
	c := *p
	c.GameStats.Achievements = slices.Clone(p.GameStats.Achievements)
	return &c
}

// HasAchievement 是否已获得成就
func (p *UserProfile) HasAchievement(id string) bool {
	return slices.Contains(p.GameStats.Achievements, id)
}

// StatsUpdate 统计的部分更新，nil 字段保持不变
type StatsUpdate struct {
	TotalPlants  *int
	HighestLevel *int
	TotalScore   *int
}

// 存储路径常量
const (
	profileObject   = "profile"
	profileProperty = "current"
)

// ProfileStore 玩家档案存储
//
// 职责：
//   - 登录（按邮箱加载或创建档案）、登出（清除档案）
//   - 合并更新统计、去重添加成就
//   - 通过 gdata 持久化（YAML 格式，与设置和存档一致）
//
// 存储数据无法解析时视为"没有档案"，不作为致命错误。
// gdataManager 为 nil 时为降级模式：只在内存中保存。
type ProfileStore struct {
	mu           sync.Mutex
	gdataManager *gdata.Manager
	current      *UserProfile
	now          func() time.Time
}

// NewProfileStore 创建档案存储并加载已保存的档案
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存档案）
func NewProfileStore(gdataManager *gdata.Manager) *ProfileStore {
	ps := &ProfileStore{
		gdataManager: gdataManager,
		now:          time.Now,
	}

	if err := ps.Load(); err != nil {
		log.Printf("[ProfileStore] Warning: Failed to load profile: %v (treating as signed out)", err)
	}
	return ps
}

// Load 从 gdata 重新加载档案
//
// 存储不存在或为空时没有档案；数据损坏时同样没有档案，并返回错误供记录
func (ps *ProfileStore) Load() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.current = nil
	if ps.gdataManager == nil {
		return nil
	}
	if !ps.gdataManager.ObjectPropExists(profileObject, profileProperty) {
		return nil
	}

	data, err := ps.gdataManager.LoadObjectProp(profileObject, profileProperty)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var profile UserProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if profile.Email == "" || profile.ID == "" {
		return fmt.Errorf("stored profile is missing id or email")
	}

	ps.current = &profile
	log.Printf("[ProfileStore] Profile loaded: %s", profile.Username)
	return nil
}

// SignIn 登录
//
// 已保存档案的邮箱与 email 相同（不区分大小写）时复用该档案，
// 否则创建统计清零、最高关卡为 1 的新档案（覆盖存储槽）。
// 两种情况都会更新最后登录时间和钱包地址并持久化。
//
// 参数：
//   - email: 邮箱，必须包含 @
//   - walletAddress: 已连接的钱包地址，不能为空
//
// 返回：
//   - *UserProfile: 档案副本
//   - error: 邮箱非法或钱包未连接时返回前置条件错误
func (ps *ProfileStore) SignIn(email, walletAddress string) (*UserProfile, error) {
	email = strings.TrimSpace(email)
	walletAddress = strings.TrimSpace(walletAddress)

	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidEmail, email)
	}
	if walletAddress == "" {
		return nil, types.ErrWalletNotConnected
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	now := ps.now()
	if ps.current == nil || !strings.EqualFold(ps.current.Email, email) {
		ps.current = &UserProfile{
			ID:        uuid.NewString(),
			Username:  email[:at],
			Email:     email,
			CreatedAt: now,
			GameStats: GameStats{
				HighestLevel: 1,
				Achievements: []string{},
			},
		}
		log.Printf("[ProfileStore] Created profile for %s", ps.current.Username)
	}
	ps.current.WalletAddress = walletAddress
	ps.current.LastLogin = now

	ps.persistLocked()
	return ps.current.clone(), nil
}

// SignOut 登出：清除内存和存储中的档案
func (ps *ProfileStore) SignOut() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.current = nil
	if ps.gdataManager == nil {
		return
	}
	// 写入空记录即清除存储槽
	if err := ps.gdataManager.SaveObjectProp(profileObject, profileProperty, []byte{}); err != nil {
		log.Printf("[ProfileStore] Warning: Failed to clear stored profile: %v", err)
	}
}

// IsAuthenticated 是否已登录
func (ps *ProfileStore) IsAuthenticated() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.current != nil
}

// CurrentUser 返回当前档案的副本，未登录时返回 nil
func (ps *ProfileStore) CurrentUser() *UserProfile {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.current == nil {
		return nil
	}
	return ps.current.clone()
}

// UpdateStats 合并更新统计并持久化
func (ps *ProfileStore) UpdateStats(update StatsUpdate) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.current == nil {
		return types.ErrNotSignedIn
	}

	stats := &ps.current.GameStats
	if update.TotalPlants != nil {
		stats.TotalPlants = *update.TotalPlants
	}
	if update.HighestLevel != nil {
		stats.HighestLevel = *update.HighestLevel
	}
	if update.TotalScore != nil {
		stats.TotalScore = *update.TotalScore
	}

	ps.persistLocked()
	return nil
}

// AddAchievement 添加成就（幂等）
//
// 返回：
//   - bool: 是否为新获得的成就
//   - error: 未登录时返回 ErrNotSignedIn
func (ps *ProfileStore) AddAchievement(id string) (bool, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.current == nil {
		return false, types.ErrNotSignedIn
	}
	if ps.current.HasAchievement(id) {
		return false, nil
	}

	ps.current.GameStats.Achievements = append(ps.current.GameStats.Achievements, id)
	ps.persistLocked()
	log.Printf("[ProfileStore] Achievement unlocked: %s", id)
	return true, nil
}

// persistLocked 保存当前档案，调用方必须持有锁
// 保存失败只记录日志，内存中的档案继续有效
func (ps *ProfileStore) persistLocked() {
	if ps.gdataManager == nil || ps.current == nil {
		return
	}

	data, err := yaml.Marshal(ps.current)
	if err != nil {
		log.Printf("[ProfileStore] Warning: Failed to marshal profile: %v", err)
		return
	}
	if err := ps.gdataManager.SaveObjectProp(profileObject, profileProperty, data); err != nil {
		log.Printf("[ProfileStore] Warning: Failed to save profile: %v", err)
	}
}
