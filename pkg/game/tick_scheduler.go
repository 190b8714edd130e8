package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/decker502/garden/pkg/systems"
)

// TickTarget 接收 tick 的对象（通常是 *GardenSession）
type TickTarget interface {
	Tick(now time.Time) systems.TickReport
}

// TickScheduler 模拟 tick 调度器
//
// 两种驱动方式：
//   - Update(deltaTime): 由 ebiten 帧循环驱动，累加帧间隔，每满一个周期触发一次 tick
//   - Run(ctx): 无界面时由 time.Ticker 驱动
//
// 宿主挂起（窗口最小化、进程暂停）期间不会补发 tick。
type TickScheduler struct {
	target   TickTarget
	interval time.Duration
	clock    func() time.Time
	elapsed  float64 // 自上次 tick 累计的秒数
	paused   bool

	// OnTick tick 完成后的回调（可为 nil）
	OnTick func(systems.TickReport)
}

// NewTickScheduler 创建调度器
//
// 参数：
//   - target: tick 目标
//   - interval: tick 周期
//   - clock: 时钟，nil 时使用 time.Now
func NewTickScheduler(target TickTarget, interval time.Duration, clock func() time.Time) *TickScheduler {
	if clock == nil {
		clock = time.Now
	}
	log.Printf("[TickScheduler] Initialized with interval=%v", interval)
	return &TickScheduler{
		target:   target,
		interval: interval,
		clock:    clock,
	}
}

// SetPaused 暂停或恢复调度
func (ts *TickScheduler) SetPaused(paused bool) {
	ts.paused = paused
}

// Progress 返回距下一次 tick 的进度（0.0 ~ 1.0）
func (ts *TickScheduler) Progress() float64 {
	if ts.interval <= 0 {
		return 0
	}
	return min(1, ts.elapsed/ts.interval.Seconds())
}

// Update 累加帧间隔，满一个周期时触发 tick
//
// 一帧最多触发一次 tick，超出部分丢弃（长时间卡顿不会连续补发）
//
// 参数：
//   - deltaTime: 帧间隔（秒）
//
// 返回：
//   - bool: 本帧是否触发了 tick
func (ts *TickScheduler) Update(deltaTime float64) bool {
	if ts.paused || ts.interval <= 0 {
		return false
	}

	ts.elapsed += deltaTime
	if ts.elapsed < ts.interval.Seconds() {
		return false
	}

	ts.elapsed = 0
	ts.fire()
	return true
}

// Run 以 time.Ticker 驱动 tick，直到 ctx 取消
func (ts *TickScheduler) Run(ctx context.Context) error {
	if ts.interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %v", ts.interval)
	}

	ticker := time.NewTicker(ts.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !ts.paused {
				ts.fire()
			}
		}
	}
}

func (ts *TickScheduler) fire() {
	report := ts.target.Tick(ts.clock())
	if ts.OnTick != nil {
		ts.OnTick(report)
	}
}
