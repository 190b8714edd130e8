package config

import (
	"fmt"

	"github.com/decker502/garden/pkg/types"
)

// PlantTraits 植物类型的不可变系数
// 每种植物的生长速度和得分倍率在配置加载后不再改变
type PlantTraits struct {
	Type                 types.PlantType `yaml:"type"`                 // 植物类型ID，如 "sunflower"
	Name                 string          `yaml:"name"`                 // 显示名称
	GrowthRateMultiplier float64         `yaml:"growthRateMultiplier"` // 生长倍率，每次有效 tick 生长 baseGrowth*倍率
	ScoreMultiplier      float64         `yaml:"scoreMultiplier"`      // 得分倍率，每跨越一个生长阶段得分 growthStepScore*倍率
	Rare                 bool            `yaml:"rare"`                 // 稀有植物（"Rare Collector" 成就）
	Description          string          `yaml:"description"`          // 商店描述
}

// DefaultPlantCatalog 默认植物目录（商店展示顺序）
func DefaultPlantCatalog() []PlantTraits {
	return []PlantTraits{
		{
			Type:                 types.PlantSunflower,
			Name:                 "Sunflower",
			GrowthRateMultiplier: 1.0,
			ScoreMultiplier:      1.0,
			Description:          "A classic garden favorite, grows at a steady pace",
		},
		{
			Type:                 types.PlantRose,
			Name:                 "Rose",
			GrowthRateMultiplier: 0.8,
			ScoreMultiplier:      1.2,
			Description:          "Slower growing but yields more points",
		},
		{
			Type:                 types.PlantCactus,
			Name:                 "Cactus",
			GrowthRateMultiplier: 0.5,
			ScoreMultiplier:      1.5,
			Rare:                 true,
			Description:          "Very slow growing but highly rewarding",
		},
		{
			Type:                 types.PlantBonsai,
			Name:                 "Bonsai",
			GrowthRateMultiplier: 0.7,
			ScoreMultiplier:      1.3,
			Rare:                 true,
			Description:          "Requires patience but offers good rewards",
		},
		{
			Type:                 types.PlantOrchid,
			Name:                 "Orchid",
			GrowthRateMultiplier: 0.9,
			ScoreMultiplier:      1.1,
			Description:          "Moderately fast growing with slight score bonus",
		},
	}
}

// validatePlantCatalog 验证植物目录：类型合法、不重复、倍率为正
func validatePlantCatalog(catalog []PlantTraits) error {
	seen := make(map[types.PlantType]bool, len(catalog))
	for i, p := range catalog {
		if !p.Type.IsValid() {
			return fmt.Errorf("plants[%d]: unknown plant type", i)
		}
		if seen[p.Type] {
			return fmt.Errorf("plants[%d]: duplicate plant type %s", i, p.Type)
		}
		seen[p.Type] = true

		if p.GrowthRateMultiplier <= 0 {
			return fmt.Errorf("plants[%d] (%s): growthRateMultiplier must be positive, got %v", i, p.Type, p.GrowthRateMultiplier)
		}
		if p.ScoreMultiplier <= 0 {
			return fmt.Errorf("plants[%d] (%s): scoreMultiplier must be positive, got %v", i, p.Type, p.ScoreMultiplier)
		}
	}

	for _, t := range types.AllPlantTypes() {
		if !seen[t] {
			return fmt.Errorf("plants: missing traits for %s", t)
		}
	}
	return nil
}
