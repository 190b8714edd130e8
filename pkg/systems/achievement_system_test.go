package systems

import (
	"slices"
	"testing"
	"time"

	"github.com/decker502/garden/pkg/components"
	"github.com/decker502/garden/pkg/config"
	"github.com/decker502/garden/pkg/types"
)

func TestEarnedAchievements(t *testing.T) {
	cfg := config.DefaultGardenConfig()

	tests := []struct {
		name  string
		setup func(s *components.GardenState)
		want  []string
	}{
		{
			name:  "新花园没有成就",
			setup: func(s *components.GardenState) { s.Plants[0].PerfectHealthSince = time.Time{} },
			want:  nil,
		},
		{
			name: "长成第一株植物",
			setup: func(s *components.GardenState) {
				s.Plants[0].Growth = components.MaxGrowth
				s.Plants[0].PerfectHealthSince = time.Time{}
			},
			want: []string{AchievementFirstPlant},
		},
		{
			name: "到达第 5 关并拥有稀有植物",
			setup: func(s *components.GardenState) {
				s.LevelID = 5
				s.Plants[0].PerfectHealthSince = time.Time{}
				s.Plants = append(s.Plants, components.NewPlant(types.PlantBonsai, testEpoch))
				s.Plants[1].PerfectHealthSince = time.Time{}
			},
			want: []string{AchievementLevel5, AchievementRarePlant},
		},
		{
			name:  "满健康持续 24 小时",
			setup: func(s *components.GardenState) {},
			want:  []string{AchievementPerfectHealth},
		},
	}

	now := testEpoch.Add(cfg.Rules.PerfectHealthDuration)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newTestGarden(cfg, types.PlantSunflower)
			tt.setup(&state)

			got := EarnedAchievements(state, now, cfg)
			if !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAchievementCatalog(t *testing.T) {
	all := Achievements()
	if len(all) != 4 {
		t.Fatalf("expected 4 achievements, got %d", len(all))
	}
	all[0].Name = "changed"
	if a, _ := FindAchievement(AchievementFirstPlant); a.Name != "Green Thumb" {
		t.Error("Achievements() should return a copy of the catalog")
	}
	if _, ok := FindAchievement("unknown"); ok {
		t.Error("expected unknown achievement lookup to fail")
	}
}
