package systems

import (
	"errors"
	"testing"
	"time"

	"github.com/decker502/garden/pkg/config"
	"github.com/decker502/garden/pkg/types"
)

func TestWater(t *testing.T) {
	cfg := config.DefaultGardenConfig()

	t.Run("浇水刷新时间且不降低健康", func(t *testing.T) {
		state := newTestGarden(cfg, types.PlantSunflower)
		state.Plants[0].Health = 40
		at := testEpoch.Add(3 * time.Minute)

		next, _, err := Water(state, state.Plants[0].ID, at, cfg)
		if err != nil {
			t.Fatalf("Water failed: %v", err)
		}
		p := next.Plants[0]
		if !p.LastWateredAt.Equal(at) {
			t.Errorf("lastWateredAt: expected %v, got %v", at, p.LastWateredAt)
		}
		if p.Health != 50 {
			t.Errorf("health: expected 50, got %d", p.Health)
		}
		if next.WaterUsed != 1 {
			t.Errorf("waterUsed: expected 1, got %d", next.WaterUsed)
		}
		if state.Plants[0].Health != 40 {
			t.Error("Water mutated the input state")
		}
	})

	t.Run("得分按关卡ID计算", func(t *testing.T) {
		state := newTestGarden(cfg, types.PlantSunflower)
		state.LevelID = 3
		state.Score = 300

		next, _, err := Water(state, state.Plants[0].ID, testEpoch, cfg)
		if err != nil {
			t.Fatalf("Water failed: %v", err)
		}
		if next.Score != 315 {
			t.Errorf("expected score 300 + 5*3 = 315, got %d", next.Score)
		}
	})

	t.Run("额度用尽时拒绝", func(t *testing.T) {
		state := newTestGarden(cfg, types.PlantSunflower)
		state.WaterUsed = cfg.Level(1).DailyWaterLimit

		next, up, err := Water(state, state.Plants[0].ID, testEpoch, cfg)
		if !errors.Is(err, types.ErrWaterQuotaExhausted) {
			t.Fatalf("expected ErrWaterQuotaExhausted, got %v", err)
		}
		if !errors.Is(err, types.ErrPreconditionFailed) {
			t.Error("quota error should be a precondition failure")
		}
		if up != nil || next.Plants[0].WaterCount != 0 || next.Score != 0 {
			t.Error("rejected water should leave state unchanged")
		}
	})

	t.Run("未知植物", func(t *testing.T) {
		state := newTestGarden(cfg, types.PlantSunflower)
		_, _, err := Water(state, "missing", testEpoch, cfg)
		if !errors.Is(err, types.ErrPlantNotFound) {
			t.Errorf("expected ErrPlantNotFound, got %v", err)
		}
	})

	t.Run("浇水触发升级", func(t *testing.T) {
		state := newTestGarden(cfg, types.PlantSunflower)
		state.Score = 98

		next, up, err := Water(state, state.Plants[0].ID, testEpoch, cfg)
		if err != nil {
			t.Fatalf("Water failed: %v", err)
		}
		if up == nil || next.LevelID != 2 {
			t.Errorf("expected level up to 2, got level %d", next.LevelID)
		}
	})
}

func TestWaterQuotaRollover(t *testing.T) {
	cfg := config.DefaultGardenConfig()
	state := newTestGarden(cfg, types.PlantSunflower)
	state.WaterUsed = cfg.Level(1).DailyWaterLimit

	if got := RemainingWater(state, testEpoch, cfg); got != 0 {
		t.Errorf("expected 0 remaining today, got %d", got)
	}

	tomorrow := testEpoch.Add(24 * time.Hour)
	if got := RemainingWater(state, tomorrow, cfg); got != cfg.Level(1).DailyWaterLimit {
		t.Errorf("expected full quota tomorrow, got %d", got)
	}

	next, _, err := Water(state, state.Plants[0].ID, tomorrow, cfg)
	if err != nil {
		t.Fatalf("Water on a new day failed: %v", err)
	}
	if next.WaterUsed != 1 || next.WaterPeriod != "2024-03-02" {
		t.Errorf("expected fresh period usage 1 on 2024-03-02, got %d on %s", next.WaterUsed, next.WaterPeriod)
	}

	ticked, _ := Tick(state, tomorrow, cfg)
	if ticked.WaterUsed != 0 {
		t.Errorf("Tick should roll the quota period, got waterUsed=%d", ticked.WaterUsed)
	}
}

func TestBuyWater(t *testing.T) {
	cfg := config.DefaultGardenConfig()

	tests := []struct {
		name      string
		used      int
		wantUsed  int
		wantError error
	}{
		{"减少已用水量", 7, 2, nil},
		{"不低于 0", 3, 0, nil},
		{"额度用尽时拒绝", 10, 10, types.ErrWaterQuotaExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newTestGarden(cfg)
			state.WaterUsed = tt.used

			next, err := BuyWater(state, testEpoch, cfg)
			if !errors.Is(err, tt.wantError) {
				t.Fatalf("expected error %v, got %v", tt.wantError, err)
			}
			if next.WaterUsed != tt.wantUsed {
				t.Errorf("waterUsed: expected %d, got %d", tt.wantUsed, next.WaterUsed)
			}
		})
	}
}

func TestApplyPesticide(t *testing.T) {
	cfg := config.DefaultGardenConfig()
	at := testEpoch.Add(time.Hour)

	t.Run("第一关未解锁", func(t *testing.T) {
		state := newTestGarden(cfg, types.PlantSunflower)
		state.Plants[0].NeedsPesticide = true

		_, err := ApplyPesticide(state, state.Plants[0].ID, at, cfg)
		if !errors.Is(err, types.ErrPesticideLocked) {
			t.Errorf("expected ErrPesticideLocked, got %v", err)
		}
	})

	t.Run("健康植物不需要施药", func(t *testing.T) {
		state := newTestGarden(cfg, types.PlantSunflower)
		state.LevelID = 2

		_, err := ApplyPesticide(state, state.Plants[0].ID, at, cfg)
		if !errors.Is(err, types.ErrPesticideNotNeeded) {
			t.Errorf("expected ErrPesticideNotNeeded, got %v", err)
		}
	})

	t.Run("施药清除病害", func(t *testing.T) {
		state := newTestGarden(cfg, types.PlantSunflower)
		state.LevelID = 2
		state.Plants[0].NeedsPesticide = true
		state.Plants[0].DiseaseLevel = 70

		next, err := ApplyPesticide(state, state.Plants[0].ID, at, cfg)
		if err != nil {
			t.Fatalf("ApplyPesticide failed: %v", err)
		}
		p := next.Plants[0]
		if p.NeedsPesticide || p.DiseaseLevel != 0 || !p.LastPesticideAppliedAt.Equal(at) {
			t.Errorf("expected treated plant, got %+v", p)
		}
		if !state.Plants[0].NeedsPesticide {
			t.Error("ApplyPesticide mutated the input state")
		}
	})
}

func TestTreatInfestedPlants(t *testing.T) {
	cfg := config.DefaultGardenConfig()
	at := testEpoch.Add(time.Hour)

	state := newTestGarden(cfg, types.PlantSunflower, types.PlantRose, types.PlantOrchid)
	state.Plants[0].NeedsPesticide = true
	state.Plants[0].DiseaseLevel = 62
	state.Plants[2].NeedsPesticide = true
	state.Plants[2].DiseaseLevel = 80

	if _, _, err := TreatInfestedPlants(state, at, cfg); !errors.Is(err, types.ErrPesticideLocked) {
		t.Fatalf("expected ErrPesticideLocked at level 1, got %v", err)
	}

	state.LevelID = 2
	next, treated, err := TreatInfestedPlants(state, at, cfg)
	if err != nil {
		t.Fatalf("TreatInfestedPlants failed: %v", err)
	}
	if treated != 2 {
		t.Errorf("expected 2 treated plants, got %d", treated)
	}
	for _, p := range next.Plants {
		if p.NeedsPesticide || p.DiseaseLevel != 0 {
			t.Errorf("%s still infested: %+v", p.Type, p)
		}
	}
	if !next.Plants[1].LastPesticideAppliedAt.Equal(testEpoch) {
		t.Error("healthy plant should not be treated")
	}
}

func TestAddPlant(t *testing.T) {
	cfg := config.DefaultGardenConfig()

	t.Run("达到上限后拒绝，升级后成功", func(t *testing.T) {
		state := newTestGarden(cfg, types.PlantSunflower, types.PlantRose)

		_, _, err := AddPlant(state, types.PlantCactus, testEpoch, cfg)
		if !errors.Is(err, types.ErrGardenFull) {
			t.Fatalf("expected ErrGardenFull, got %v", err)
		}

		state.LevelID = 2
		next, plant, err := AddPlant(state, types.PlantCactus, testEpoch, cfg)
		if err != nil {
			t.Fatalf("AddPlant at level 2 failed: %v", err)
		}
		if len(next.Plants) != 3 || next.Plants[2].ID != plant.ID {
			t.Errorf("expected new plant appended, got %d plants", len(next.Plants))
		}
	})

	t.Run("冷却期内第二次种植被拒绝", func(t *testing.T) {
		state := newTestGarden(cfg)

		next, _, err := AddPlant(state, types.PlantOrchid, testEpoch, cfg)
		if err != nil {
			t.Fatalf("first AddPlant failed: %v", err)
		}
		if want := testEpoch.Add(cfg.Rules.PlantCooldown); !next.NextPlantAvailableAt.Equal(want) {
			t.Errorf("nextPlantAvailableAt: expected %v, got %v", want, next.NextPlantAvailableAt)
		}

		again, _, err := AddPlant(next, types.PlantRose, testEpoch.Add(time.Minute), cfg)
		if !errors.Is(err, types.ErrPlantCooldown) {
			t.Fatalf("expected ErrPlantCooldown, got %v", err)
		}
		if len(again.Plants) != 1 {
			t.Errorf("rejected AddPlant changed plant count to %d", len(again.Plants))
		}

		if _, _, err := AddPlant(next, types.PlantRose, testEpoch.Add(cfg.Rules.PlantCooldown), cfg); err != nil {
			t.Errorf("AddPlant after cooldown failed: %v", err)
		}
	})

	t.Run("未知类型", func(t *testing.T) {
		_, _, err := AddPlant(newTestGarden(cfg), types.PlantUnknown, testEpoch, cfg)
		if !errors.Is(err, types.ErrUnknownPlantType) {
			t.Errorf("expected ErrUnknownPlantType, got %v", err)
		}
	})
}
