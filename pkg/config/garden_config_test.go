package config

import (
	"math/big"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/decker502/garden/pkg/types"
)

func TestLoadGardenConfig(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("加载仓库内置配置文件", func(t *testing.T) {
		cfg, err := LoadGardenConfig(filepath.Join("..", "..", DefaultGardenConfigPath))
		if err != nil {
			t.Fatalf("LoadGardenConfig failed: %v", err)
		}

		def := DefaultGardenConfig()
		if !reflect.DeepEqual(cfg.Levels, def.Levels) {
			t.Errorf("levels in data/garden.yaml differ from DefaultLevels():\n got %+v\nwant %+v", cfg.Levels, def.Levels)
		}
		if !reflect.DeepEqual(cfg.Plants, def.Plants) {
			t.Errorf("plants in data/garden.yaml differ from DefaultPlantCatalog()")
		}
		if cfg.Rules.TickInterval != 10*time.Second {
			t.Errorf("tickInterval: expected 10s, got %v", cfg.Rules.TickInterval)
		}
		if cfg.Rules.PlantCooldown != 5*time.Minute {
			t.Errorf("plantCooldown: expected 5m, got %v", cfg.Rules.PlantCooldown)
		}
		if cfg.Rules.BonusPlantType != types.PlantSunflower {
			t.Errorf("bonusPlantType: expected sunflower, got %v", cfg.Rules.BonusPlantType)
		}
	})

	t.Run("缺省字段使用默认值", func(t *testing.T) {
		configPath := filepath.Join(tempDir, "minimal.yaml")
		if err := os.WriteFile(configPath, []byte("rules:\n  tickInterval: 2s\n"), 0644); err != nil {
			t.Fatalf("Failed to write test config: %v", err)
		}

		cfg, err := LoadGardenConfig(configPath)
		if err != nil {
			t.Fatalf("LoadGardenConfig failed: %v", err)
		}
		if cfg.Rules.TickInterval != 2*time.Second {
			t.Errorf("tickInterval: expected 2s, got %v", cfg.Rules.TickInterval)
		}
		if cfg.Rules.HydrationDecayAfter != 5*time.Second {
			t.Errorf("hydrationDecayAfter: expected default 5s, got %v", cfg.Rules.HydrationDecayAfter)
		}
		if len(cfg.Levels) != 5 {
			t.Errorf("expected default 5 levels, got %d", len(cfg.Levels))
		}
		if got := cfg.Traits(types.PlantCactus).ScoreMultiplier; got != 1.5 {
			t.Errorf("cactus scoreMultiplier: expected 1.5, got %v", got)
		}
	})

	t.Run("文件不存在", func(t *testing.T) {
		if _, err := LoadGardenConfig(filepath.Join(tempDir, "missing.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("YAML 格式错误", func(t *testing.T) {
		configPath := filepath.Join(tempDir, "broken.yaml")
		if err := os.WriteFile(configPath, []byte("rules: [unclosed"), 0644); err != nil {
			t.Fatalf("Failed to write test config: %v", err)
		}
		if _, err := LoadGardenConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestParseGardenConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "未知植物类型",
			yaml:    "plants:\n  - type: peashooter\n    growthRateMultiplier: 1\n    scoreMultiplier: 1\n",
			wantErr: "unknown plant type",
		},
		{
			name:    "倍率非正",
			yaml:    fullCatalogWith("    growthRateMultiplier: 0\n    scoreMultiplier: 1\n"),
			wantErr: "growthRateMultiplier must be positive",
		},
		{
			name:    "植物目录不完整",
			yaml:    "plants:\n  - type: sunflower\n    growthRateMultiplier: 1\n    scoreMultiplier: 1\n",
			wantErr: "missing traits",
		},
		{
			name:    "关卡ID不连续",
			yaml:    "levels:\n  - {id: 1, name: A, maxPlants: 1, scoreToNextLevel: 10}\n  - {id: 3, name: B, maxPlants: 1}\n",
			wantErr: "id must be 2",
		},
		{
			name:    "升级门槛不递增",
			yaml:    "levels:\n  - {id: 1, name: A, maxPlants: 1, scoreToNextLevel: 10}\n  - {id: 2, name: B, maxPlants: 1, scoreToNextLevel: 10}\n  - {id: 3, name: C, maxPlants: 1}\n",
			wantErr: "must be greater than 10",
		},
		{
			name:    "最后一关必须无上限",
			yaml:    "levels:\n  - {id: 1, name: A, maxPlants: 1, scoreToNextLevel: 10}\n",
			wantErr: "last level must have scoreToNextLevel 0",
		},
		{
			name:    "中间关卡不能无上限",
			yaml:    "levels:\n  - {id: 1, name: A, maxPlants: 1}\n  - {id: 2, name: B, maxPlants: 1}\n",
			wantErr: "only the last level may be unbounded",
		},
		{
			name:    "病害阈值越界",
			yaml:    "levels:\n  - {id: 1, name: A, maxPlants: 1, diseaseThreshold: 101}\n",
			wantErr: "diseaseThreshold must be between 0 and 100",
		},
		{
			name:    "非法时区",
			yaml:    "rules:\n  quotaTimezone: Mars/Olympus\n",
			wantErr: "quotaTimezone",
		},
		{
			name:    "非法价格",
			yaml:    "rules:\n  pesticidePrice: \"-1\"\n",
			wantErr: "pesticidePrice",
		},
		{
			name:    "负时长",
			yaml:    "rules:\n  plantCooldown: -1m\n",
			wantErr: "plantCooldown cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGardenConfig([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

// fullCatalogWith 生成完整的植物目录，第一个条目使用给定的系数
func fullCatalogWith(firstTraits string) string {
	var b strings.Builder
	b.WriteString("plants:\n")
	for i, pt := range types.AllPlantTypes() {
		b.WriteString("  - type: " + pt.ID() + "\n")
		if i == 0 {
			b.WriteString(firstTraits)
			continue
		}
		b.WriteString("    growthRateMultiplier: 1\n    scoreMultiplier: 1\n")
	}
	return b.String()
}

func TestLevelTable(t *testing.T) {
	levels := DefaultLevels()

	first := levels.First()
	if first.ID != 1 || first.PesticideUnlocked {
		t.Errorf("first level: expected id 1 with pesticide locked, got %+v", first)
	}

	next, ok := levels.Next(1)
	if !ok || next.ID != 2 {
		t.Errorf("Next(1): expected level 2, got %+v ok=%v", next, ok)
	}

	if _, ok := levels.Next(5); ok {
		t.Error("Next(5): terminal level should have no successor")
	}

	last, _ := levels.Get(5)
	if !last.IsTerminal() {
		t.Error("level 5 should be terminal")
	}
	if last.ReadyToAdvance(1 << 30) {
		t.Error("terminal level should never be ready to advance")
	}
	if !first.ReadyToAdvance(100) || first.ReadyToAdvance(99) {
		t.Error("level 1 should advance at exactly 100 points")
	}
}

func TestQuotaPeriod(t *testing.T) {
	cfg, err := ParseGardenConfig([]byte("rules:\n  quotaTimezone: Asia/Shanghai\n"))
	if err != nil {
		t.Fatalf("ParseGardenConfig failed: %v", err)
	}

	// 2024-03-01 17:00 UTC = 2024-03-02 01:00 Asia/Shanghai
	now := time.Date(2024, 3, 1, 17, 0, 0, 0, time.UTC)
	if got := cfg.Rules.QuotaPeriod(now); got != "2024-03-02" {
		t.Errorf("QuotaPeriod: expected 2024-03-02, got %s", got)
	}

	def := DefaultGardenConfig()
	if got := def.Rules.QuotaPeriod(now); got != "2024-03-01" {
		t.Errorf("QuotaPeriod (UTC): expected 2024-03-01, got %s", got)
	}
}

func TestParseNativeAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"0.1", "100000000000000000", false},
		{"1", "1000000000000000000", false},
		{" 2.5 ", "2500000000000000000", false},
		{"0", "0", false},
		{"0.0000000000000000001", "", true},
		{"-0.1", "", true},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNativeAmount(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("expected %s wei, got %s", tt.want, got)
			}
		})
	}

	if got := FormatNativeAmount(big.NewInt(100000000000000000)); got != "0.1000" {
		t.Errorf("FormatNativeAmount: expected 0.1000, got %s", got)
	}
	if got := DefaultGardenConfig().Rules.PesticidePriceWei(); got.Cmp(big.NewInt(100000000000000000)) != 0 {
		t.Errorf("default pesticide price: expected 0.1 in wei, got %s", got)
	}
}
