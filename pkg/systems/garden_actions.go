package systems

import (
	"fmt"
	"log"
	"time"

	"github.com/decker502/garden/pkg/components"
	"github.com/decker502/garden/pkg/config"
	"github.com/decker502/garden/pkg/types"
)

// 玩家操作
//
// 所有操作都是纯函数：成功时返回新状态，失败时返回原状态和前置条件错误
// （errors.Is(err, types.ErrPreconditionFailed) 为 true），不存在部分生效。

// RollWaterPeriod 额度周期切换时重置已用水量
// now 所在的自然日（配置时区）与 state.WaterPeriod 不同时，WaterUsed 清零
func RollWaterPeriod(state components.GardenState, now time.Time, cfg *config.GardenConfig) components.GardenState {
	period := cfg.Rules.QuotaPeriod(now)
	if state.WaterPeriod == period {
		return state
	}
	if state.WaterPeriod != "" && state.WaterUsed > 0 {
		log.Printf("[GardenActions] Water quota period %s -> %s, resetting usage %d", state.WaterPeriod, period, state.WaterUsed)
	}
	state.WaterPeriod = period
	state.WaterUsed = 0
	return state
}

// RemainingWater 返回当前周期剩余的浇水额度
func RemainingWater(state components.GardenState, now time.Time, cfg *config.GardenConfig) int {
	rolled := RollWaterPeriod(state, now, cfg)
	return max(0, cfg.Level(rolled.LevelID).DailyWaterLimit-rolled.WaterUsed)
}

// Water 给植物浇水
//
// 额度用尽时拒绝。成功时刷新浇水时间、累加浇水次数、恢复健康（不超过 100）、
// 消耗一次额度，并获得 waterScorePerLevel * 关卡ID 的分数，随后评估升级。
func Water(state components.GardenState, plantID string, now time.Time, cfg *config.GardenConfig) (components.GardenState, *LevelUp, error) {
	next := RollWaterPeriod(state.Clone(), now, cfg)
	level := cfg.Level(next.LevelID)

	if next.WaterUsed >= level.DailyWaterLimit {
		return state, nil, types.ErrWaterQuotaExhausted
	}
	idx := next.FindPlant(plantID)
	if idx < 0 {
		return state, nil, fmt.Errorf("%w: %s", types.ErrPlantNotFound, plantID)
	}

	p := &next.Plants[idx]
	p.LastWateredAt = now
	p.WaterCount++
	p.Health = min(components.MaxHealth, p.Health+cfg.Rules.WaterHealthBoost)
	if p.Health >= components.MaxHealth && p.PerfectHealthSince.IsZero() {
		p.PerfectHealthSince = now
	}

	next.WaterUsed++
	next.Score += cfg.Rules.WaterScorePerLevel * level.ID

	next, up := EvaluateLevel(next, now, cfg)
	return next, up, nil
}

// ApplyPesticide 给需要杀虫剂的植物施药
// 当前关卡未解锁杀虫剂或植物不需要施药时拒绝
func ApplyPesticide(state components.GardenState, plantID string, now time.Time, cfg *config.GardenConfig) (components.GardenState, error) {
	if !cfg.Level(state.LevelID).PesticideUnlocked {
		return state, types.ErrPesticideLocked
	}

	next := state.Clone()
	idx := next.FindPlant(plantID)
	if idx < 0 {
		return state, fmt.Errorf("%w: %s", types.ErrPlantNotFound, plantID)
	}
	if !next.Plants[idx].NeedsPesticide {
		return state, types.ErrPesticideNotNeeded
	}

	treatPlant(&next.Plants[idx], now)
	return next, nil
}

// TreatInfestedPlants 对所有需要杀虫剂的植物施药（购买杀虫剂确认后调用）
//
// 返回：
//   - components.GardenState: 新状态
//   - int: 施药的植物数量（可能为 0）
//   - error: 当前关卡未解锁杀虫剂时返回 ErrPesticideLocked
func TreatInfestedPlants(state components.GardenState, now time.Time, cfg *config.GardenConfig) (components.GardenState, int, error) {
	if !cfg.Level(state.LevelID).PesticideUnlocked {
		return state, 0, types.ErrPesticideLocked
	}

	next := state.Clone()
	treated := 0
	for i := range next.Plants {
		if next.Plants[i].NeedsPesticide {
			treatPlant(&next.Plants[i], now)
			treated++
		}
	}
	return next, treated, nil
}

func treatPlant(p *components.Plant, now time.Time) {
	p.LastPesticideAppliedAt = now
	p.NeedsPesticide = false
	p.DiseaseLevel = 0
}

// AddPlant 种植一株新植物
//
// 植物数达到当前关卡上限或种植冷却未结束时拒绝（两项检查相互独立）。
// 成功后种植冷却重置为 now + rules.PlantCooldown。
//
// 返回：
//   - components.GardenState: 新状态
//   - components.Plant: 新种下的植物
//   - error: 前置条件不满足时返回错误
func AddPlant(state components.GardenState, plantType types.PlantType, now time.Time, cfg *config.GardenConfig) (components.GardenState, components.Plant, error) {
	if !plantType.IsValid() {
		return state, components.Plant{}, types.ErrUnknownPlantType
	}
	level := cfg.Level(state.LevelID)
	if len(state.Plants) >= level.MaxPlants {
		return state, components.Plant{}, types.ErrGardenFull
	}
	if now.Before(state.NextPlantAvailableAt) {
		return state, components.Plant{}, fmt.Errorf("%w (%s remaining)",
			types.ErrPlantCooldown, state.NextPlantAvailableAt.Sub(now).Round(time.Second))
	}

	plant := components.NewPlant(plantType, now)
	next := state.Clone()
	next.Plants = append(next.Plants, plant)
	next.NextPlantAvailableAt = now.Add(cfg.Rules.PlantCooldown)
	return next, plant, nil
}

// BuyWater 补充浇水额度：已用水量减少 rules.WaterTopUp（不低于 0）
// 与浇水使用同一额度检查，额度已用尽时拒绝
func BuyWater(state components.GardenState, now time.Time, cfg *config.GardenConfig) (components.GardenState, error) {
	next := RollWaterPeriod(state.Clone(), now, cfg)
	if next.WaterUsed >= cfg.Level(next.LevelID).DailyWaterLimit {
		return state, types.ErrWaterQuotaExhausted
	}

	next.WaterUsed = max(0, next.WaterUsed-cfg.Rules.WaterTopUp)
	return next, nil
}
