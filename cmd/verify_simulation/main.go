// verify_simulation 无界面运行花园模拟，用于验证生长、得分和升级节奏
//
// 用法：
//
//	go run ./cmd/verify_simulation -plant cactus -ticks 2000 -water-every 12
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/decker502/garden/pkg/components"
	"github.com/decker502/garden/pkg/config"
	"github.com/decker502/garden/pkg/game"
	"github.com/decker502/garden/pkg/systems"
	"github.com/decker502/garden/pkg/types"
)

var (
	// 命令行参数
	configPath = flag.String("config", "", "花园配置文件路径（默认使用内置配置）")
	plantName  = flag.String("plant", "sunflower", "种植的植物类型")
	ticks      = flag.Int("ticks", 720, "模拟的 tick 数")
	waterEvery = flag.Int("water-every", 1, "每隔多少个 tick 浇一次水（0 = 从不浇水）")
	treat      = flag.Bool("treat", true, "解锁后自动施药")
	replant    = flag.Bool("replant", true, "冷却结束后自动补种")
	report     = flag.Int("report", 60, "每隔多少个 tick 打印一次状态")
	live       = flag.Duration("live", 0, "以真实时间运行会话的时长（如 30s），0 表示使用虚拟时钟")
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
)

func main() {
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	cfg := config.DefaultGardenConfig()
	if *configPath != "" {
		loaded, err := config.LoadGardenConfig(*configPath)
		if err != nil {
			fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	plantType, err := types.ParsePlantType(*plantName)
	if err != nil {
		fatalf("Invalid -plant: %v", err)
	}

	if *live > 0 {
		runLive(cfg, plantType, *live)
		return
	}

	now := time.Date(2024, 1, 1, 8, 0, 0, 0, cfg.Rules.QuotaLocation())
	state := components.NewGardenState(cfg.Levels.First().ID, cfg.Rules.QuotaPeriod(now))

	sim := &simulation{cfg: cfg, plantType: plantType, state: state}
	sim.plant(now)

	for i := 1; i <= *ticks; i++ {
		now = now.Add(cfg.Rules.TickInterval)
		sim.step(i, now)
		if *report > 0 && i%*report == 0 {
			sim.print(i, now)
		}
	}

	sim.print(*ticks, now)
	fmt.Printf("\nWater used %d times, %d pesticide treatments, %d level ups\n", sim.watered, sim.treated, sim.levelUps)
	for _, id := range systems.EarnedAchievements(sim.state, now, cfg) {
		a, _ := systems.FindAchievement(id)
		fmt.Printf("Achievement: %s - %s\n", a.Name, a.Description)
	}
}

// simulation 模拟一个按固定策略照料花园的玩家
type simulation struct {
	cfg       *config.GardenConfig
	plantType types.PlantType
	state     components.GardenState

	watered  int
	treated  int
	levelUps int
}

func (s *simulation) plant(now time.Time) {
	next, p, err := systems.AddPlant(s.state, s.plantType, now, s.cfg)
	if err != nil {
		log.Printf("[Simulation] Cannot plant: %v", err)
		return
	}
	s.state = next
	log.Printf("[Simulation] Planted %s (%s)", p.Type, p.ID)
}

func (s *simulation) step(tick int, now time.Time) {
	if *waterEvery > 0 && tick%*waterEvery == 0 {
		for _, p := range s.state.Plants {
			next, up, err := systems.Water(s.state, p.ID, now, s.cfg)
			if err != nil {
				break
			}
			s.state = next
			s.watered++
			s.noteLevelUp(up)
		}
	}

	if *treat {
		if next, n, err := systems.TreatInfestedPlants(s.state, now, s.cfg); err == nil && n > 0 {
			s.state = next
			s.treated += n
		}
	}

	if *replant {
		if next, _, err := systems.AddPlant(s.state, s.plantType, now, s.cfg); err == nil {
			s.state = next
		}
	}

	next, report := systems.Tick(s.state, now, s.cfg)
	s.state = next
	s.noteLevelUp(report.LevelUp)
}

func (s *simulation) noteLevelUp(up *systems.LevelUp) {
	if up == nil {
		return
	}
	s.levelUps++
	fmt.Printf(">>> Level up: %s -> %s\n", up.From.Name, up.To.Name)
}

func (s *simulation) print(tick int, now time.Time) {
	level := s.cfg.Level(s.state.LevelID)
	fmt.Printf("[tick %5d %s] level=%d score=%d water=%d/%d plants=%d\n",
		tick, now.Format("15:04:05"), level.ID, s.state.Score, s.state.WaterUsed, level.DailyWaterLimit, len(s.state.Plants))
	for _, p := range s.state.Plants {
		fmt.Printf("    %-10s hp=%3d growth=%6.2f disease=%3d pests=%v\n", p.Type, p.Health, p.Growth, p.DiseaseLevel, p.NeedsPesticide)
	}
}

// runLive 用真实时钟驱动 GardenSession，验证调度器和会话的串联
func runLive(cfg *config.GardenConfig, plantType types.PlantType, d time.Duration) {
	session := game.NewGardenSession(cfg, game.SessionDeps{})
	if _, err := session.AddPlant(plantType); err != nil {
		fatalf("Cannot plant: %v", err)
	}

	scheduler := game.NewTickScheduler(session, cfg.Rules.TickInterval, nil)
	ticks := 0
	scheduler.OnTick = func(report systems.TickReport) {
		ticks++
		if *waterEvery > 0 && ticks%*waterEvery == 0 {
			for _, p := range session.Snapshot().Plants {
				if _, err := session.Water(p.ID); err != nil {
					log.Printf("[Simulation] Water skipped: %v", err)
				}
			}
		}
		state := session.Snapshot()
		fmt.Printf("[tick %3d] score=%d scored=%d plants=%d\n", ticks, state.Score, report.ScoreAwarded, len(state.Plants))
	}

	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		fatalf("Scheduler stopped: %v", err)
	}
	fmt.Printf("\nLive run finished after %d ticks, level %d\n", ticks, session.Level().ID)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
