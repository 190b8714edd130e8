package config

import (
	"fmt"
	"time"
)

// GameLevel 关卡（难度档位）配置
// 按累计得分从低到高排列，得分达到 ScoreToNextLevel 时进入下一档
type GameLevel struct {
	ID                int           `yaml:"id"`                // 关卡ID，从 1 开始连续递增
	Name              string        `yaml:"name"`              // 关卡名称，如 "Beginner Garden"
	MaxPlants         int           `yaml:"maxPlants"`         // 可种植的最大植物数
	ScoreToNextLevel  int           `yaml:"scoreToNextLevel"`  // 升级所需累计得分，0 表示终极关卡（无上限）
	DailyWaterLimit   int           `yaml:"dailyWaterLimit"`   // 每日浇水额度
	WaterCooldown     time.Duration `yaml:"waterCooldown"`     // 浇水冷却（保留字段，种植冷却使用 rules.plantCooldown）
	PesticideUnlocked bool          `yaml:"pesticideUnlocked"` // 是否解锁杀虫剂
	DiseaseThreshold  int           `yaml:"diseaseThreshold"`  // 病害阈值，超过后植物需要杀虫剂
}

// IsTerminal 是否为终极关卡（永不升级）
func (l GameLevel) IsTerminal() bool {
	return l.ScoreToNextLevel <= 0
}

// ReadyToAdvance 得分是否已达到升级门槛
func (l GameLevel) ReadyToAdvance(score int) bool {
	return !l.IsTerminal() && score >= l.ScoreToNextLevel
}

// LevelTable 按ID升序排列的关卡表
type LevelTable []GameLevel

// Get 按ID查找关卡
func (t LevelTable) Get(id int) (GameLevel, bool) {
	for _, l := range t {
		if l.ID == id {
			return l, true
		}
	}
	return GameLevel{}, false
}

// First 返回第一个关卡
func (t LevelTable) First() GameLevel {
	if len(t) == 0 {
		return GameLevel{}
	}
	return t[0]
}

// Next 返回 id 的下一个关卡，终极关卡返回 false
func (t LevelTable) Next(id int) (GameLevel, bool) {
	return t.Get(id + 1)
}

// DefaultLevels 默认的 5 档关卡
func DefaultLevels() LevelTable {
	return LevelTable{
		{ID: 1, Name: "Beginner Garden", MaxPlants: 2, ScoreToNextLevel: 100, DailyWaterLimit: 10, WaterCooldown: 5 * time.Minute, PesticideUnlocked: false, DiseaseThreshold: 50},
		{ID: 2, Name: "Amateur Garden", MaxPlants: 4, ScoreToNextLevel: 300, DailyWaterLimit: 20, WaterCooldown: 4 * time.Minute, PesticideUnlocked: true, DiseaseThreshold: 60},
		{ID: 3, Name: "Professional Garden", MaxPlants: 6, ScoreToNextLevel: 600, DailyWaterLimit: 30, WaterCooldown: 3 * time.Minute, PesticideUnlocked: true, DiseaseThreshold: 70},
		{ID: 4, Name: "Expert Garden", MaxPlants: 8, ScoreToNextLevel: 1000, DailyWaterLimit: 40, WaterCooldown: 2 * time.Minute, PesticideUnlocked: true, DiseaseThreshold: 80},
		{ID: 5, Name: "Master Garden", MaxPlants: 10, ScoreToNextLevel: 0, DailyWaterLimit: 50, WaterCooldown: time.Minute, PesticideUnlocked: true, DiseaseThreshold: 90},
	}
}

// validateLevelTable 验证关卡表的完整性和合法性
//
// 规则：
//   - 至少一个关卡，ID 从 1 开始连续递增
//   - 除最后一关外，升级门槛为正且严格递增
//   - 最后一关为终极关卡（scoreToNextLevel 为 0）
func validateLevelTable(levels LevelTable) error {
	if len(levels) == 0 {
		return fmt.Errorf("at least one level is required")
	}

	prevThreshold := 0
	for i, l := range levels {
		if l.ID != i+1 {
			return fmt.Errorf("levels[%d]: id must be %d, got %d", i, i+1, l.ID)
		}
		if l.Name == "" {
			return fmt.Errorf("levels[%d]: name is required", i)
		}
		if l.MaxPlants < 1 {
			return fmt.Errorf("levels[%d]: maxPlants must be at least 1, got %d", i, l.MaxPlants)
		}
		if l.DailyWaterLimit < 0 {
			return fmt.Errorf("levels[%d]: dailyWaterLimit cannot be negative", i)
		}
		if l.DiseaseThreshold < 0 || l.DiseaseThreshold > 100 {
			return fmt.Errorf("levels[%d]: diseaseThreshold must be between 0 and 100, got %d", i, l.DiseaseThreshold)
		}

		last := i == len(levels)-1
		if last {
			if !l.IsTerminal() {
				return fmt.Errorf("levels[%d]: last level must have scoreToNextLevel 0 (unbounded)", i)
			}
			continue
		}
		if l.IsTerminal() {
			return fmt.Errorf("levels[%d]: only the last level may be unbounded", i)
		}
		if l.ScoreToNextLevel <= prevThreshold {
			return fmt.Errorf("levels[%d]: scoreToNextLevel must be greater than %d, got %d", i, prevThreshold, l.ScoreToNextLevel)
		}
		prevThreshold = l.ScoreToNextLevel
	}
	return nil
}
