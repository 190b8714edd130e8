package systems

import (
	"time"

	"github.com/decker502/garden/pkg/components"
	"github.com/decker502/garden/pkg/config"
)

// 成就ID
const (
	AchievementFirstPlant    = "first_plant"
	AchievementLevel5        = "level_5"
	AchievementRarePlant     = "rare_plant"
	AchievementPerfectHealth = "perfect_health"
)

// Achievement 成就定义
type Achievement struct {
	ID          string
	Name        string
	Description string
}

var achievementCatalog = []Achievement{
	{ID: AchievementFirstPlant, Name: "Green Thumb", Description: "Grow your first plant"},
	{ID: AchievementLevel5, Name: "Master Gardener", Description: "Reach level 5"},
	{ID: AchievementRarePlant, Name: "Rare Collector", Description: "Grow a rare plant"},
	{ID: AchievementPerfectHealth, Name: "Plant Whisperer", Description: "Keep a plant at 100% health for 24 hours"},
}

// Achievements 返回全部成就（显示顺序）
func Achievements() []Achievement {
	out := make([]Achievement, len(achievementCatalog))
	copy(out, achievementCatalog)
	return out
}

// FindAchievement 按ID查找成就
func FindAchievement(id string) (Achievement, bool) {
	for _, a := range achievementCatalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// EarnedAchievements 返回当前花园状态满足条件的成就ID
// 结果只反映当前状态，已获得的成就由档案去重保存
func EarnedAchievements(state components.GardenState, now time.Time, cfg *config.GardenConfig) []string {
	var earned []string

	if state.CountOf(components.Plant.IsFullyGrown) > 0 {
		earned = append(earned, AchievementFirstPlant)
	}

	if state.LevelID >= 5 {
		earned = append(earned, AchievementLevel5)
	}

	rare := state.CountOf(func(p components.Plant) bool { return cfg.Traits(p.Type).Rare })
	if rare > 0 {
		earned = append(earned, AchievementRarePlant)
	}

	perfect := state.CountOf(func(p components.Plant) bool {
		return !p.PerfectHealthSince.IsZero() && now.Sub(p.PerfectHealthSince) >= cfg.Rules.PerfectHealthDuration
	})
	if perfect > 0 {
		earned = append(earned, AchievementPerfectHealth)
	}

	return earned
}
