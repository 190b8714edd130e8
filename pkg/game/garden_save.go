package game

import (
	"fmt"
	"log"
	"time"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/decker502/garden/pkg/components"
)

// GardenSaveVersion 花园存档版本号
const GardenSaveVersion = 1

const (
	gardenObject   = "garden"
	gardenProperty = "current"
)

// GardenSaveData 花园存档
type GardenSaveData struct {
	Version int                    `yaml:"version"` // 存档版本号，用于兼容性检查
	SavedAt time.Time              `yaml:"savedAt"`
	OwnerID string                 `yaml:"ownerId"` // 档案ID，未登录时为空
	State   components.GardenState `yaml:"state"`
}

// GardenSaveStore 花园快照存储
//
// 保存最近一次花园状态，使重启后可以继续游戏。
// 与档案共用同一个 gdata 应用空间；gdataManager 为 nil 时所有操作为空操作。
type GardenSaveStore struct {
	gdataManager *gdata.Manager
}

// NewGardenSaveStore 创建花园快照存储
func NewGardenSaveStore(gdataManager *gdata.Manager) *GardenSaveStore {
	return &GardenSaveStore{gdataManager: gdataManager}
}

// Save 保存花园快照
//
// 参数：
//   - ownerID: 当前档案ID（未登录为空）
//   - state: 花园状态
//   - savedAt: 保存时间
func (s *GardenSaveStore) Save(ownerID string, state components.GardenState, savedAt time.Time) error {
	if s.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(&GardenSaveData{
		Version: GardenSaveVersion,
		SavedAt: savedAt,
		OwnerID: ownerID,
		State:   state,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal garden save: %w", err)
	}

	if err := s.gdataManager.SaveObjectProp(gardenObject, gardenProperty, data); err != nil {
		return fmt.Errorf("failed to save garden: %w", err)
	}
	return nil
}

// Load 加载花园快照
//
// 返回：
//   - *GardenSaveData: 存档数据，不存在时为 nil
//   - error: 读取失败、数据损坏或版本不兼容时返回错误
func (s *GardenSaveStore) Load() (*GardenSaveData, error) {
	if s.gdataManager == nil {
		return nil, nil
	}
	if !s.gdataManager.ObjectPropExists(gardenObject, gardenProperty) {
		return nil, nil
	}

	data, err := s.gdataManager.LoadObjectProp(gardenObject, gardenProperty)
	if err != nil {
		return nil, fmt.Errorf("failed to load garden save: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var save GardenSaveData
	if err := yaml.Unmarshal(data, &save); err != nil {
		return nil, fmt.Errorf("failed to unmarshal garden save: %w", err)
	}

	// 版本兼容性检查
	if save.Version != GardenSaveVersion {
		return nil, fmt.Errorf("incompatible garden save version: %d (expected %d)", save.Version, GardenSaveVersion)
	}

	log.Printf("[GardenSaveStore] Loaded garden saved at %s: level=%d, score=%d, plants=%d",
		save.SavedAt.Format(time.RFC3339), save.State.LevelID, save.State.Score, len(save.State.Plants))
	return &save, nil
}

// Clear 清除花园快照
func (s *GardenSaveStore) Clear() error {
	if s.gdataManager == nil {
		return nil
	}
	if err := s.gdataManager.SaveObjectProp(gardenObject, gardenProperty, []byte{}); err != nil {
		return fmt.Errorf("failed to clear garden save: %w", err)
	}
	return nil
}
