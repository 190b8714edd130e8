package systems

import (
	"math"
	"time"

	"github.com/decker502/garden/pkg/components"
	"github.com/decker502/garden/pkg/config"
)

// growthPrecision 生长值保留的小数精度，避免 0.7 等倍率累加产生的浮点误差跨不过阶段边界
const growthPrecision = 1e6

// TickReport 一次 tick 的结果摘要
type TickReport struct {
	// ScoreAwarded 本次 tick 因生长跨越阶段获得的分数
	ScoreAwarded int
	// NewlyInfested 本次 tick 新进入"需要杀虫剂"状态的植物ID
	NewlyInfested []string
	// FullyGrown 本次 tick 刚长成的植物ID
	FullyGrown []string
	// LevelUp 本次 tick 触发的升级（没有则为 nil）
	LevelUp *LevelUp
}

// Tick 推进一次花园模拟
//
// Tick 是纯函数：只依据经过的时间和植物的最近护理时间戳计算新状态，
// 不修改传入的 state。每株植物按顺序应用：缺水衰减、病害累积、生长、得分，
// 全部植物处理完后评估一次关卡升级。
//
// 参数：
//   - state: 当前花园状态
//   - now: 本次 tick 的时间
//   - cfg: 花园配置（规则、植物系数、关卡表）
//
// 返回：
//   - components.GardenState: 新状态
//   - TickReport: 得分、病害、升级等事件摘要
func Tick(state components.GardenState, now time.Time, cfg *config.GardenConfig) (components.GardenState, TickReport) {
	next := RollWaterPeriod(state.Clone(), now, cfg)
	level := cfg.Level(next.LevelID)

	var report TickReport
	for i := range next.Plants {
		p := &next.Plants[i]
		wasInfested := p.NeedsPesticide
		wasGrown := p.IsFullyGrown()

		report.ScoreAwarded += tickPlant(p, now, level, cfg)

		if p.NeedsPesticide && !wasInfested {
			report.NewlyInfested = append(report.NewlyInfested, p.ID)
		}
		if p.IsFullyGrown() && !wasGrown {
			report.FullyGrown = append(report.FullyGrown, p.ID)
		}
	}
	next.Score += report.ScoreAwarded

	next, report.LevelUp = EvaluateLevel(next, now, cfg)
	return next, report
}

// tickPlant 对单株植物应用一次 tick 规则，返回获得的分数
func tickPlant(p *components.Plant, now time.Time, level config.GameLevel, cfg *config.GardenConfig) int {
	rules := &cfg.Rules
	sinceWatered := now.Sub(p.LastWateredAt)

	// 1. 缺水衰减
	if sinceWatered > rules.HydrationDecayAfter {
		p.Health = max(0, p.Health-rules.HydrationHealthDecay)
	}

	// 2. 病害累积
	if now.Sub(p.LastPesticideAppliedAt) > rules.DiseaseAccrualAfter {
		p.DiseaseLevel = min(components.MaxDiseaseLevel, p.DiseaseLevel+rules.DiseaseIncrement)
		if p.DiseaseLevel > level.DiseaseThreshold {
			p.NeedsPesticide = true
			p.Health = max(0, p.Health-rules.DiseaseHealthPenalty)
		}
	}

	// 3. 生长：健康且刚浇过水
	awarded := 0
	if p.Health > rules.GrowthHealthFloor && sinceWatered < rules.HydrationDecayAfter {
		traits := cfg.Traits(p.Type)
		before := p.Growth
		grown := before + rules.BaseGrowth*traits.GrowthRateMultiplier
		p.Growth = math.Min(components.MaxGrowth, math.Round(grown*growthPrecision)/growthPrecision)

		// 4. 每跨越一个生长阶段得分一次
		crossed := int(p.Growth)/rules.GrowthStep - int(before)/rules.GrowthStep
		if crossed > 0 {
			awarded = crossed * StepScore(rules.GrowthStepScore, traits.ScoreMultiplier)
		}
	}

	// 满健康持续时间跟踪
	if p.Health >= components.MaxHealth {
		if p.PerfectHealthSince.IsZero() {
			p.PerfectHealthSince = now
		}
	} else {
		p.PerfectHealthSince = time.Time{}
	}

	return awarded
}

// StepScore 返回一个生长阶段的得分（基础分乘以得分倍率，四舍五入）
func StepScore(base int, multiplier float64) int {
	return int(math.Round(float64(base) * multiplier))
}
