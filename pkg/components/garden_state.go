package components

import "time"

// GardenState 一座花园的完整状态
//
// GardenState 按值传递：模拟和操作函数接收旧状态、返回新状态，
// 不会修改调用方持有的值。Plants 切片在返回前总是经过 Clone。
type GardenState struct {
	// Plants 按种植顺序排列（即显示顺序）
	Plants []Plant `yaml:"plants"`
	// LevelID 当前关卡ID，只升不降
	LevelID int `yaml:"levelId"`
	// Score 累计得分，单调不减
	Score int `yaml:"score"`
	// WaterUsed 当前额度周期内已用水量
	WaterUsed int `yaml:"waterUsed"`
	// WaterPeriod 额度周期键（配置时区下的日期，如 "2024-03-01"）
	WaterPeriod string `yaml:"waterPeriod"`
	// NextPlantAvailableAt 种植冷却结束时间
	NextPlantAvailableAt time.Time `yaml:"nextPlantAvailableAt"`
}

// NewGardenState 创建第一关的空花园
func NewGardenState(firstLevelID int, period string) GardenState {
	return GardenState{
		Plants:      []Plant{},
		LevelID:     firstLevelID,
		WaterPeriod: period,
	}
}

// Clone 返回深拷贝，修改副本的植物不会影响原状态
func (s GardenState) Clone() GardenState {
	c := s
	c.Plants = make([]Plant, len(s.Plants))
	copy(c.Plants, s.Plants)
	return c
}

// FindPlant 按ID查找植物下标，找不到返回 -1
func (s GardenState) FindPlant(id string) int {
	for i := range s.Plants {
		if s.Plants[i].ID == id {
			return i
		}
	}
	return -1
}

// CountOf 返回满足条件的植物数量
func (s GardenState) CountOf(match func(Plant) bool) int {
	n := 0
	for _, p := range s.Plants {
		if match(p) {
			n++
		}
	}
	return n
}
