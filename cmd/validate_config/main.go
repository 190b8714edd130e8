// validate_config 校验花园配置文件并打印摘要
//
// 用法：
//
//	go run ./cmd/validate_config -config data/garden.yaml
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/decker502/garden/pkg/config"
)

var configPath = flag.String("config", config.DefaultGardenConfigPath, "花园配置文件路径")

func main() {
	flag.Parse()

	cfg, err := config.LoadGardenConfig(*configPath)
	if err != nil {
		fmt.Printf("❌ 配置无效: %v\n", err)
		os.Exit(1)
	}

	r := cfg.Rules
	fmt.Printf("✅ %s 格式正确\n", *configPath)
	fmt.Printf("✅ tick 间隔 %v，种植冷却 %v，配额时区 %s\n", r.TickInterval, r.PlantCooldown, r.QuotaLocation())
	fmt.Printf("✅ 杀虫剂价格 %s\n", config.FormatNativeAmount(r.PesticidePriceWei()))
	if r.Treasury == "" {
		fmt.Printf("⚠️  未设置收款地址，杀虫剂购买不可用\n")
	}

	fmt.Printf("✅ 植物种类: %d\n", len(cfg.Plants))
	for _, p := range cfg.Plants {
		rare := ""
		if p.Rare {
			rare = " (稀有)"
		}
		fmt.Printf("   - %-10s 生长 x%.2f  得分 x%.2f%s\n", p.Name, p.GrowthRateMultiplier, p.ScoreMultiplier, rare)
	}

	fmt.Printf("✅ 关卡数量: %d\n", len(cfg.Levels))
	for _, l := range cfg.Levels {
		next := "终级"
		if !l.IsTerminal() {
			next = fmt.Sprintf("%d 分升级", l.ScoreToNextLevel)
		}
		fmt.Printf("   %d. %-20s 植物上限 %2d  每日浇水 %2d  病害阈值 %2d  杀虫剂 %v  %s\n",
			l.ID, l.Name, l.MaxPlants, l.DailyWaterLimit, l.DiseaseThreshold, l.PesticideUnlocked, next)
	}
}
