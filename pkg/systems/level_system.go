package systems

import (
	"log"
	"time"

	"github.com/decker502/garden/pkg/components"
	"github.com/decker502/garden/pkg/config"
)

// LevelUp 一次关卡升级事件
type LevelUp struct {
	From config.GameLevel
	To   config.GameLevel
	// BonusPlant 升级赠送的植物（超过赠送上限的关卡为 nil）
	BonusPlant *components.Plant
}

// EvaluateLevel 根据当前得分评估关卡升级
//
// 每次评估最多升一级：即使得分一次跨过多个门槛，
// 后续的得分变化（或下一次 tick）会继续评估。终极关卡永不升级，也不存在降级。
// 升级到 ID 不超过 rules.BonusPlantMaxLevel 的关卡时赠送一株植物，
// 赠送不受植物上限和种植冷却限制。
//
// 返回：
//   - components.GardenState: 新状态（未升级时与输入相同）
//   - *LevelUp: 升级事件，未升级时为 nil
func EvaluateLevel(state components.GardenState, now time.Time, cfg *config.GardenConfig) (components.GardenState, *LevelUp) {
	current := cfg.Level(state.LevelID)
	if !current.ReadyToAdvance(state.Score) {
		return state, nil
	}

	nextLevel, ok := cfg.Levels.Next(current.ID)
	if !ok {
		return state, nil
	}

	next := state.Clone()
	next.LevelID = nextLevel.ID
	event := &LevelUp{From: current, To: nextLevel}

	if nextLevel.ID <= cfg.Rules.BonusPlantMaxLevel {
		bonus := components.NewPlant(cfg.Rules.BonusPlantType, now)
		next.Plants = append(next.Plants, bonus)
		event.BonusPlant = &bonus
	}

	log.Printf("[LevelSystem] Level up: %d (%s) -> %d (%s), score=%d, bonus=%v",
		current.ID, current.Name, nextLevel.ID, nextLevel.Name, next.Score, event.BonusPlant != nil)
	return next, event
}
