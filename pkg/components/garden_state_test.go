package components

import (
	"testing"
	"time"

	"github.com/decker502/garden/pkg/types"
)

func TestNewPlant(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewPlant(types.PlantRose, now)

	if p.ID == "" {
		t.Error("expected a generated ID")
	}
	if p.Health != MaxHealth || p.Growth != 0 || p.DiseaseLevel != 0 {
		t.Errorf("expected default stats, got health=%d growth=%v disease=%d", p.Health, p.Growth, p.DiseaseLevel)
	}
	if !p.LastWateredAt.Equal(now) || !p.LastPesticideAppliedAt.Equal(now) || !p.PlantedAt.Equal(now) {
		t.Error("expected all timestamps to equal creation time")
	}
	if p.NeedsPesticide || p.WaterCount != 0 {
		t.Error("new plant should not need pesticide and have no waterings")
	}

	other := NewPlant(types.PlantRose, now)
	if other.ID == p.ID {
		t.Error("expected unique IDs for plants created at the same instant")
	}
}

func TestGardenStateClone(t *testing.T) {
	now := time.Now()
	s := NewGardenState(1, "2024-03-01")
	s.Plants = append(s.Plants, NewPlant(types.PlantSunflower, now), NewPlant(types.PlantCactus, now))

	c := s.Clone()
	c.Plants[0].Health = 10
	c.Score = 99

	if s.Plants[0].Health != MaxHealth {
		t.Error("modifying the clone changed the original plant")
	}
	if s.Score != 0 {
		t.Error("modifying the clone changed the original score")
	}
}

func TestGardenStateFindPlant(t *testing.T) {
	now := time.Now()
	s := NewGardenState(1, "")
	a := NewPlant(types.PlantSunflower, now)
	b := NewPlant(types.PlantOrchid, now)
	s.Plants = []Plant{a, b}

	if got := s.FindPlant(b.ID); got != 1 {
		t.Errorf("FindPlant(b) = %d, want 1", got)
	}
	if got := s.FindPlant("missing"); got != -1 {
		t.Errorf("FindPlant(missing) = %d, want -1", got)
	}

	orchids := s.CountOf(func(p Plant) bool { return p.Type == types.PlantOrchid })
	if orchids != 1 {
		t.Errorf("CountOf(orchid) = %d, want 1", orchids)
	}
}
