package config

import (
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/decker502/garden/pkg/types"
	"gopkg.in/yaml.v3"
)

// DefaultGardenConfigPath 内嵌的默认花园配置路径
const DefaultGardenConfigPath = "data/garden.yaml"

// weiPerUnit 原生代币的最小单位换算（1 单位 = 10^18 wei）
var weiPerUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// SimulationRules 花园模拟和玩家操作使用的数值规则
// 所有时长字段在 YAML 中写作 "10s"、"5m" 等字符串
type SimulationRules struct {
	TickInterval          time.Duration   `yaml:"tickInterval"`          // 模拟 tick 间隔
	HydrationDecayAfter   time.Duration   `yaml:"hydrationDecayAfter"`   // 超过此时长未浇水则健康衰减；短于此时长才可生长
	HydrationHealthDecay  int             `yaml:"hydrationHealthDecay"`  // 缺水时每 tick 扣除的健康值
	DiseaseAccrualAfter   time.Duration   `yaml:"diseaseAccrualAfter"`   // 超过此时长未施药则病害累积
	DiseaseIncrement      int             `yaml:"diseaseIncrement"`      // 每 tick 病害增量
	DiseaseHealthPenalty  int             `yaml:"diseaseHealthPenalty"`  // 病害超过阈值时每 tick 额外扣除的健康值
	GrowthHealthFloor     int             `yaml:"growthHealthFloor"`     // 健康值高于此值才可生长
	BaseGrowth            float64         `yaml:"baseGrowth"`            // 每 tick 基础生长量（乘以植物生长倍率）
	GrowthStep            int             `yaml:"growthStep"`            // 生长阶段宽度，跨越阶段时得分
	GrowthStepScore       int             `yaml:"growthStepScore"`       // 每阶段基础得分（乘以植物得分倍率）
	WaterHealthBoost      int             `yaml:"waterHealthBoost"`      // 浇水恢复的健康值
	WaterScorePerLevel    int             `yaml:"waterScorePerLevel"`    // 浇水得分 = 此值 * 关卡ID
	WaterTopUp            int             `yaml:"waterTopUp"`            // 购买一次补充的水量
	PlantCooldown         time.Duration   `yaml:"plantCooldown"`         // 种植冷却（所有植物共享）
	BonusPlantMaxLevel    int             `yaml:"bonusPlantMaxLevel"`    // 升级到不高于此ID的关卡时赠送植物
	BonusPlantType        types.PlantType `yaml:"bonusPlantType"`        // 赠送的植物类型
	PerfectHealthDuration time.Duration   `yaml:"perfectHealthDuration"` // "Plant Whisperer" 成就要求的满健康持续时长
	QuotaTimezone         string          `yaml:"quotaTimezone"`         // 每日浇水额度按此时区的自然日重置
	PesticidePrice        string          `yaml:"pesticidePrice"`        // 杀虫剂价格（原生代币，十进制字符串，如 "0.1"）
	Treasury              string          `yaml:"treasury"`              // 收款地址

	quotaLocation     *time.Location
	pesticidePriceWei *big.Int
}

// QuotaLocation 返回每日额度使用的时区
func (r *SimulationRules) QuotaLocation() *time.Location {
	if r.quotaLocation == nil {
		return time.UTC
	}
	return r.quotaLocation
}

// PesticidePriceWei 返回杀虫剂价格（wei）
func (r *SimulationRules) PesticidePriceWei() *big.Int {
	if r.pesticidePriceWei == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(r.pesticidePriceWei)
}

// QuotaPeriod 返回 now 所在的额度周期键（配置时区下的 "2006-01-02"）
func (r *SimulationRules) QuotaPeriod(now time.Time) string {
	return now.In(r.QuotaLocation()).Format("2006-01-02")
}

// GardenConfig 花园配置：模拟规则 + 植物目录 + 关卡表
type GardenConfig struct {
	Rules  SimulationRules `yaml:"rules"`
	Plants []PlantTraits   `yaml:"plants"`
	Levels LevelTable      `yaml:"levels"`

	plantIndex map[types.PlantType]PlantTraits
}

// Traits 返回植物类型的系数
// 未知类型返回倍率为 1 的占位值，调用方应先用 IsValid 检查
func (c *GardenConfig) Traits(t types.PlantType) PlantTraits {
	if traits, ok := c.plantIndex[t]; ok {
		return traits
	}
	return PlantTraits{Type: t, Name: t.String(), GrowthRateMultiplier: 1, ScoreMultiplier: 1}
}

// Level 按ID查找关卡，找不到时返回第一关
func (c *GardenConfig) Level(id int) GameLevel {
	if l, ok := c.Levels.Get(id); ok {
		return l
	}
	return c.Levels.First()
}

// DefaultGardenConfig 返回内置默认配置（与 data/garden.yaml 一致）
// 用于测试和无法读取配置文件时的降级
func DefaultGardenConfig() *GardenConfig {
	cfg := &GardenConfig{
		Plants: DefaultPlantCatalog(),
		Levels: DefaultLevels(),
	}
	if err := finalizeGardenConfig(cfg); err != nil {
		// 内置默认值必然合法
		panic(fmt.Sprintf("default garden config is invalid: %v", err))
	}
	return cfg
}

// ParseGardenConfig 从 YAML 字节解析花园配置
//
// 缺省字段使用默认值填充；plants 或 levels 整体缺省时使用默认目录和关卡表。
//
// 参数：
//   - data: YAML 内容
//
// 返回：
//   - *GardenConfig: 解析并验证后的配置
//   - error: 解析或验证失败时返回错误
func ParseGardenConfig(data []byte) (*GardenConfig, error) {
	var cfg GardenConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse garden config YAML: %w", err)
	}

	if err := finalizeGardenConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid garden config: %w", err)
	}
	return &cfg, nil
}

// LoadGardenConfig 从磁盘文件加载花园配置（--config 覆盖内嵌配置时使用）
func LoadGardenConfig(path string) (*GardenConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read garden config file %s: %w", path, err)
	}

	cfg, err := ParseGardenConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func finalizeGardenConfig(cfg *GardenConfig) error {
	applyDefaults(cfg)

	if err := validateGardenConfig(cfg); err != nil {
		return err
	}

	loc, err := time.LoadLocation(cfg.Rules.QuotaTimezone)
	if err != nil {
		return fmt.Errorf("rules.quotaTimezone: %w", err)
	}
	cfg.Rules.quotaLocation = loc

	price, err := ParseNativeAmount(cfg.Rules.PesticidePrice)
	if err != nil {
		return fmt.Errorf("rules.pesticidePrice: %w", err)
	}
	cfg.Rules.pesticidePriceWei = price

	cfg.plantIndex = make(map[types.PlantType]PlantTraits, len(cfg.Plants))
	for _, p := range cfg.Plants {
		if p.Name == "" {
			p.Name = p.Type.String()
		}
		cfg.plantIndex[p.Type] = p
	}
	return nil
}

// applyDefaults 为未设置的可选字段填充默认值
func applyDefaults(cfg *GardenConfig) {
	r := &cfg.Rules
	if r.TickInterval == 0 {
		r.TickInterval = 10 * time.Second
	}
	if r.HydrationDecayAfter == 0 {
		r.HydrationDecayAfter = 5 * time.Second
	}
	if r.HydrationHealthDecay == 0 {
		r.HydrationHealthDecay = 5
	}
	if r.DiseaseAccrualAfter == 0 {
		r.DiseaseAccrualAfter = 30 * time.Second
	}
	if r.DiseaseIncrement == 0 {
		r.DiseaseIncrement = 2
	}
	if r.DiseaseHealthPenalty == 0 {
		r.DiseaseHealthPenalty = 2
	}
	if r.GrowthHealthFloor == 0 {
		r.GrowthHealthFloor = 50
	}
	if r.BaseGrowth == 0 {
		r.BaseGrowth = 1
	}
	if r.GrowthStep == 0 {
		r.GrowthStep = 10
	}
	if r.GrowthStepScore == 0 {
		r.GrowthStepScore = 10
	}
	if r.WaterHealthBoost == 0 {
		r.WaterHealthBoost = 10
	}
	if r.WaterScorePerLevel == 0 {
		r.WaterScorePerLevel = 5
	}
	if r.WaterTopUp == 0 {
		r.WaterTopUp = 5
	}
	if r.PlantCooldown == 0 {
		r.PlantCooldown = 5 * time.Minute
	}
	if r.BonusPlantMaxLevel == 0 {
		r.BonusPlantMaxLevel = 5
	}
	if r.BonusPlantType == types.PlantUnknown {
		r.BonusPlantType = types.PlantSunflower
	}
	if r.PerfectHealthDuration == 0 {
		r.PerfectHealthDuration = 24 * time.Hour
	}
	if r.QuotaTimezone == "" {
		r.QuotaTimezone = "UTC"
	}
	if r.PesticidePrice == "" {
		r.PesticidePrice = "0.1"
	}

	if len(cfg.Plants) == 0 {
		cfg.Plants = DefaultPlantCatalog()
	}
	if len(cfg.Levels) == 0 {
		cfg.Levels = DefaultLevels()
	}
}

// validateGardenConfig 验证花园配置的完整性和合法性
func validateGardenConfig(cfg *GardenConfig) error {
	r := &cfg.Rules
	durations := []struct {
		name  string
		value time.Duration
	}{
		{"tickInterval", r.TickInterval},
		{"hydrationDecayAfter", r.HydrationDecayAfter},
		{"diseaseAccrualAfter", r.DiseaseAccrualAfter},
		{"plantCooldown", r.PlantCooldown},
		{"perfectHealthDuration", r.PerfectHealthDuration},
	}
	for _, d := range durations {
		if d.value < 0 {
			return fmt.Errorf("rules.%s cannot be negative, got %v", d.name, d.value)
		}
	}

	if r.HydrationHealthDecay < 0 || r.DiseaseIncrement < 0 || r.DiseaseHealthPenalty < 0 {
		return fmt.Errorf("rules: decay and disease amounts cannot be negative")
	}
	if r.GrowthHealthFloor < 0 || r.GrowthHealthFloor > 100 {
		return fmt.Errorf("rules.growthHealthFloor must be between 0 and 100, got %d", r.GrowthHealthFloor)
	}
	if r.BaseGrowth < 0 {
		return fmt.Errorf("rules.baseGrowth cannot be negative, got %v", r.BaseGrowth)
	}
	if r.GrowthStep < 1 || r.GrowthStep > 100 {
		return fmt.Errorf("rules.growthStep must be between 1 and 100, got %d", r.GrowthStep)
	}
	if r.WaterHealthBoost < 0 || r.WaterScorePerLevel < 0 || r.GrowthStepScore < 0 {
		return fmt.Errorf("rules: water boost and score amounts cannot be negative")
	}
	if r.WaterTopUp < 1 {
		return fmt.Errorf("rules.waterTopUp must be at least 1, got %d", r.WaterTopUp)
	}
	if !r.BonusPlantType.IsValid() {
		return fmt.Errorf("rules.bonusPlantType is invalid")
	}

	if err := validatePlantCatalog(cfg.Plants); err != nil {
		return err
	}
	return validateLevelTable(cfg.Levels)
}

// ParseNativeAmount 将十进制代币数量（如 "0.1"）转换为 wei
//
// 返回：
//   - *big.Int: wei 数量
//   - error: 格式非法、为负数或精度超过 18 位小数时返回错误
func ParseNativeAmount(s string) (*big.Int, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if r.Sign() < 0 {
		return nil, fmt.Errorf("amount cannot be negative: %q", s)
	}

	r.Mul(r, new(big.Rat).SetInt(weiPerUnit))
	if !r.IsInt() {
		return nil, fmt.Errorf("amount %q has more than 18 decimal places", s)
	}
	return new(big.Int).Set(r.Num()), nil
}

// FormatNativeAmount 将 wei 格式化为十进制代币数量（保留 4 位小数）
func FormatNativeAmount(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return new(big.Rat).SetFrac(wei, weiPerUnit).FloatString(4)
}
