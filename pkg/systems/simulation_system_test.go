package systems

import (
	"testing"
	"time"

	"github.com/decker502/garden/pkg/components"
	"github.com/decker502/garden/pkg/config"
	"github.com/decker502/garden/pkg/types"
)

var testEpoch = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

// newTestGarden 创建只含指定植物的第一关花园，所有时间戳为 testEpoch
func newTestGarden(cfg *config.GardenConfig, plantTypes ...types.PlantType) components.GardenState {
	s := components.NewGardenState(cfg.Levels.First().ID, cfg.Rules.QuotaPeriod(testEpoch))
	for _, pt := range plantTypes {
		s.Plants = append(s.Plants, components.NewPlant(pt, testEpoch))
	}
	return s
}

// keepWatered 把所有植物的浇水时间设为 at 之前 1 秒（不消耗额度、不加分）
func keepWatered(s components.GardenState, at time.Time) components.GardenState {
	s = s.Clone()
	for i := range s.Plants {
		s.Plants[i].LastWateredAt = at.Add(-time.Second)
	}
	return s
}

func TestTickDoesNotMutateInput(t *testing.T) {
	cfg := config.DefaultGardenConfig()
	state := newTestGarden(cfg, types.PlantSunflower)

	_, _ = Tick(state, testEpoch.Add(time.Minute), cfg)

	if state.Plants[0].Health != components.MaxHealth {
		t.Errorf("Tick mutated the input plant: health=%d", state.Plants[0].Health)
	}
}

func TestTickClampingAndMonotonicGrowth(t *testing.T) {
	cfg := config.DefaultGardenConfig()
	state := newTestGarden(cfg, types.AllPlantTypes()...)
	state.LevelID = 5 // 容纳全部植物，且不会再升级

	now := testEpoch
	prevGrowth := make(map[string]float64)
	for i := 0; i < 500; i++ {
		now = now.Add(cfg.Rules.TickInterval)
		// 前 200 个 tick 保持浇水，之后任其衰减
		if i < 200 {
			state = keepWatered(state, now)
		}
		state, _ = Tick(state, now, cfg)

		for _, p := range state.Plants {
			if p.Health < 0 || p.Health > components.MaxHealth {
				t.Fatalf("tick %d: %s health out of range: %d", i, p.Type, p.Health)
			}
			if p.Growth < 0 || p.Growth > components.MaxGrowth {
				t.Fatalf("tick %d: %s growth out of range: %v", i, p.Type, p.Growth)
			}
			if p.DiseaseLevel < 0 || p.DiseaseLevel > components.MaxDiseaseLevel {
				t.Fatalf("tick %d: %s disease out of range: %d", i, p.Type, p.DiseaseLevel)
			}
			if p.Growth < prevGrowth[p.ID] {
				t.Fatalf("tick %d: %s growth decreased %v -> %v", i, p.Type, prevGrowth[p.ID], p.Growth)
			}
			prevGrowth[p.ID] = p.Growth
		}
	}
}

func TestTickWaterThenGrowScenario(t *testing.T) {
	cfg := config.DefaultGardenConfig()
	state := newTestGarden(cfg, types.PlantSunflower)
	plantID := state.Plants[0].ID

	// 浇水一次：waterCount=1，健康封顶 100，得分 +5
	state, up, err := Water(state, plantID, testEpoch, cfg)
	if err != nil {
		t.Fatalf("Water failed: %v", err)
	}
	if up != nil {
		t.Fatalf("unexpected level up: %+v", up)
	}
	p := state.Plants[0]
	if p.WaterCount != 1 || p.Health != 100 || state.Score != 5 {
		t.Fatalf("after water: waterCount=%d health=%d score=%d", p.WaterCount, p.Health, state.Score)
	}

	// 连续 10 个有效 tick：生长到 10，得分 +10
	now := testEpoch
	for i := 0; i < 10; i++ {
		now = now.Add(cfg.Rules.TickInterval)
		state = keepWatered(state, now)
		state, _ = Tick(state, now, cfg)
	}

	p = state.Plants[0]
	if p.Growth != 10 {
		t.Errorf("expected growth 10 after 10 ticks, got %v", p.Growth)
	}
	if state.Score != 15 {
		t.Errorf("expected score 5 + 10 = 15, got %d", state.Score)
	}
}

func TestTickHydrationDecay(t *testing.T) {
	cfg := config.DefaultGardenConfig()
	state := newTestGarden(cfg, types.PlantRose)

	now := testEpoch
	expected := components.MaxHealth
	for expected > 0 {
		now = now.Add(cfg.Rules.TickInterval)
		state, _ = Tick(state, now, cfg)
		expected = max(0, expected-cfg.Rules.HydrationHealthDecay)

		p := state.Plants[0]
		// 病害超过阈值后会额外扣血，这里只检查不高于纯缺水衰减的值
		if p.Health > expected {
			t.Fatalf("expected health <= %d, got %d", expected, p.Health)
		}
		if p.Growth != 0 {
			t.Fatalf("untouched plant should not grow, got %v", p.Growth)
		}
		if p.Health == 0 {
			break
		}
	}

	// 健康不高于 50 时即使浇过水也不生长
	state = keepWatered(state, now.Add(cfg.Rules.TickInterval))
	state.Plants[0].Health = 50
	state, _ = Tick(state, now.Add(cfg.Rules.TickInterval), cfg)
	if state.Plants[0].Growth != 0 {
		t.Errorf("plant with health <= 50 should not grow, got %v", state.Plants[0].Growth)
	}
}

func TestTickDisease(t *testing.T) {
	cfg := config.DefaultGardenConfig()
	threshold := cfg.Level(1).DiseaseThreshold

	tests := []struct {
		name        string
		disease     int
		sincePest   time.Duration
		wantDisease int
		wantNeeds   bool
		wantHealth  int
	}{
		{"施药后不久不累积", 0, 10 * time.Second, 0, false, 100},
		{"超过累积时长开始累积", 0, 31 * time.Second, 2, false, 100},
		{"恰好越过阈值", threshold - 1, time.Minute, threshold + 1, true, 98},
		{"封顶 100", 99, time.Minute, 100, true, 98},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := testEpoch.Add(time.Hour)
			state := newTestGarden(cfg, types.PlantOrchid)
			state = keepWatered(state, now)
			state.Plants[0].DiseaseLevel = tt.disease
			state.Plants[0].LastPesticideAppliedAt = now.Add(-tt.sincePest)

			state, _ = Tick(state, now, cfg)
			p := state.Plants[0]
			if p.DiseaseLevel != tt.wantDisease {
				t.Errorf("disease: expected %d, got %d", tt.wantDisease, p.DiseaseLevel)
			}
			if p.NeedsPesticide != tt.wantNeeds {
				t.Errorf("needsPesticide: expected %v, got %v", tt.wantNeeds, p.NeedsPesticide)
			}
			if p.Health != tt.wantHealth {
				t.Errorf("health: expected %d, got %d", tt.wantHealth, p.Health)
			}
		})
	}
}

func TestTickScorePerGrowthBoundary(t *testing.T) {
	cfg := config.DefaultGardenConfig()

	tests := []struct {
		plantType types.PlantType
		ticks     int
		wantScore int
	}{
		{types.PlantSunflower, 10, 10},
		{types.PlantRose, 13, 12},   // 0.8 * 13 = 10.4
		{types.PlantCactus, 20, 15}, // 0.5 * 20 = 10
		{types.PlantBonsai, 15, 13}, // 0.7 * 15 = 10.5
		{types.PlantOrchid, 12, 11}, // 0.9 * 12 = 10.8
		{types.PlantSunflower, 9, 0},
		{types.PlantSunflower, 25, 20},
	}

	for _, tt := range tests {
		t.Run(tt.plantType.String(), func(t *testing.T) {
			state := newTestGarden(cfg, tt.plantType)
			now := testEpoch
			total := 0
			for i := 0; i < tt.ticks; i++ {
				now = now.Add(cfg.Rules.TickInterval)
				state = keepWatered(state, now)
				// 施药时间跟随，避免病害扣血
				state.Plants[0].LastPesticideAppliedAt = now
				var report TickReport
				state, report = Tick(state, now, cfg)
				total += report.ScoreAwarded
			}
			if total != tt.wantScore || state.Score != tt.wantScore {
				t.Errorf("expected score %d, got report total %d, state %d (growth %v)",
					tt.wantScore, total, state.Score, state.Plants[0].Growth)
			}
		})
	}
}

func TestTickGrowthSaturates(t *testing.T) {
	cfg := config.DefaultGardenConfig()
	state := newTestGarden(cfg, types.PlantSunflower)
	state.LevelID = 5
	state.Plants[0].Growth = 99.5

	now := testEpoch.Add(time.Minute)
	state = keepWatered(state, now)
	state.Plants[0].LastPesticideAppliedAt = now
	state, report := Tick(state, now, cfg)

	if state.Plants[0].Growth != components.MaxGrowth {
		t.Errorf("expected growth capped at 100, got %v", state.Plants[0].Growth)
	}
	if report.ScoreAwarded != 10 {
		t.Errorf("crossing 100 should award one step, got %d", report.ScoreAwarded)
	}
	if len(report.FullyGrown) != 1 {
		t.Errorf("expected plant reported as fully grown, got %v", report.FullyGrown)
	}

	// 已长成的植物不再得分
	now = now.Add(cfg.Rules.TickInterval)
	state = keepWatered(state, now)
	_, report = Tick(state, now, cfg)
	if report.ScoreAwarded != 0 || len(report.FullyGrown) != 0 {
		t.Errorf("fully grown plant should not score again: %+v", report)
	}
}

func TestTickPerfectHealthTracking(t *testing.T) {
	cfg := config.DefaultGardenConfig()
	state := newTestGarden(cfg, types.PlantSunflower)

	now := testEpoch.Add(cfg.Rules.TickInterval)
	state = keepWatered(state, now)
	state.Plants[0].LastPesticideAppliedAt = now
	state, _ = Tick(state, now, cfg)
	if !state.Plants[0].PerfectHealthSince.Equal(testEpoch) {
		t.Errorf("perfect health should be tracked from planting, got %v", state.Plants[0].PerfectHealthSince)
	}

	// 未浇水：健康下降，计时清零
	now = now.Add(cfg.Rules.TickInterval)
	state, _ = Tick(state, now, cfg)
	if !state.Plants[0].PerfectHealthSince.IsZero() {
		t.Error("perfect health tracking should reset when health drops")
	}
}

func TestTickTriggersLevelUp(t *testing.T) {
	cfg := config.DefaultGardenConfig()
	state := newTestGarden(cfg, types.PlantSunflower)
	state.Score = 95
	state.Plants[0].Growth = 9.5

	now := testEpoch.Add(time.Minute)
	state = keepWatered(state, now)
	state, report := Tick(state, now, cfg)

	if report.LevelUp == nil {
		t.Fatal("expected a level up after crossing 100 points")
	}
	if state.LevelID != 2 || report.LevelUp.To.ID != 2 {
		t.Errorf("expected level 2, got %d", state.LevelID)
	}
	if len(state.Plants) != 2 || report.LevelUp.BonusPlant == nil {
		t.Errorf("expected bonus plant, got %d plants", len(state.Plants))
	}
}
