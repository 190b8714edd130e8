// Package types 定义共享的基础类型
// 这个包不依赖任何其他业务包，用于解决循环引用问题
package types

import (
	"fmt"
	"strings"
)

// PlantType 定义植物的类型
type PlantType int

const (
	// PlantUnknown 未知植物类型
	PlantUnknown PlantType = iota
	// PlantSunflower 向日葵
	PlantSunflower
	// PlantRose 玫瑰
	PlantRose
	// PlantCactus 仙人掌
	PlantCactus
	// PlantBonsai 盆景
	PlantBonsai
	// PlantOrchid 兰花
	PlantOrchid
)

// AllPlantTypes 返回全部可种植的植物类型（商店展示顺序）
func AllPlantTypes() []PlantType {
	return []PlantType{PlantSunflower, PlantRose, PlantCactus, PlantBonsai, PlantOrchid}
}

// String 返回植物类型的字符串表示
func (p PlantType) String() string {
	switch p {
	case PlantSunflower:
		return "Sunflower"
	case PlantRose:
		return "Rose"
	case PlantCactus:
		return "Cactus"
	case PlantBonsai:
		return "Bonsai"
	case PlantOrchid:
		return "Orchid"
	default:
		return "Unknown"
	}
}

// ID 返回配置文件中使用的小写植物ID（如 "sunflower"）
func (p PlantType) ID() string {
	return strings.ToLower(p.String())
}

// IsValid 报告是否为可种植的已知类型
func (p PlantType) IsValid() bool {
	return p >= PlantSunflower && p <= PlantOrchid
}

// ParsePlantType 将植物ID（大小写不敏感）解析为 PlantType
//
// 参数：
//   - s: 植物ID，如 "sunflower"、"Rose"
//
// 返回：
//   - PlantType: 解析结果
//   - error: 未知植物ID时返回错误（可用 errors.Is 匹配 ErrUnknownPlantType）
func ParsePlantType(s string) (PlantType, error) {
	id := strings.ToLower(strings.TrimSpace(s))
	for _, t := range AllPlantTypes() {
		if t.ID() == id {
			return t, nil
		}
	}
	return PlantUnknown, fmt.Errorf("%w: %q", ErrUnknownPlantType, s)
}

// MarshalText 实现 encoding.TextMarshaler，存档和配置中以植物ID保存
func (p PlantType) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlantType, int(p))
	}
	return []byte(p.ID()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (p *PlantType) UnmarshalText(text []byte) error {
	t, err := ParsePlantType(string(text))
	if err != nil {
		return err
	}
	*p = t
	return nil
}
