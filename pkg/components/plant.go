package components

import (
	"time"

	"github.com/google/uuid"

	"github.com/decker502/garden/pkg/types"
)

// 植物属性的取值上限（下限均为 0）
const (
	MaxHealth       = 100
	MaxGrowth       = 100.0
	MaxDiseaseLevel = 100
)

// Plant 花园中的一株植物
//
// 植物只会被创建（种植或升级赠送），不会被删除；
// 数值字段只由模拟 tick 和玩家操作（浇水、施药）修改。
type Plant struct {
	// ID 唯一标识（UUID v4）
	ID string `yaml:"id"`
	// Type 植物类型
	Type types.PlantType `yaml:"type"`

	// Health 健康值 0-100
	Health int `yaml:"health"`
	// Growth 生长进度 0-100，单调不减
	// 使用浮点数保存，使 0.5、0.7 等生长倍率能够逐 tick 累积
	Growth float64 `yaml:"growth"`
	// DiseaseLevel 病害程度 0-100
	DiseaseLevel int `yaml:"diseaseLevel"`
	// NeedsPesticide 病害超过当前关卡阈值后置为 true，施药后清除
	NeedsPesticide bool `yaml:"needsPesticide"`
	// WaterCount 累计浇水次数
	WaterCount int `yaml:"waterCount"`

	LastWateredAt          time.Time `yaml:"lastWateredAt"`
	LastPesticideAppliedAt time.Time `yaml:"lastPesticideAppliedAt"`
	PlantedAt              time.Time `yaml:"plantedAt"`

	// PerfectHealthSince 连续满健康的起始时间，健康值低于 100 时清零
	PerfectHealthSince time.Time `yaml:"perfectHealthSince,omitempty"`
}

// NewPlant 创建默认状态的植物（满健康、零生长、无病害，所有时间戳为 now）
func NewPlant(plantType types.PlantType, now time.Time) Plant {
	return Plant{
		ID:                     uuid.NewString(),
		Type:                   plantType,
		Health:                 MaxHealth,
		LastWateredAt:          now,
		LastPesticideAppliedAt: now,
		PlantedAt:              now,
		PerfectHealthSince:     now,
	}
}

// GrowthPercent 返回取整后的生长进度（用于显示）
func (p Plant) GrowthPercent() int {
	return int(p.Growth)
}

// IsFullyGrown 是否已长成
func (p Plant) IsFullyGrown() bool {
	return p.Growth >= MaxGrowth
}
