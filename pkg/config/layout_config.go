package config

// 布局配置常量
// 本文件定义了花园界面的布局参数（逻辑像素，ebiten 会按窗口自动缩放）

// Window Configuration (窗口配置)
const (
	// GameWindowWidth 逻辑屏幕宽度
	GameWindowWidth = 800

	// GameWindowHeight 逻辑屏幕高度
	GameWindowHeight = 600
)

// Garden List Configuration (植物列表配置)
const (
	// PlantListStartX 植物列表左上角 X 坐标
	PlantListStartX = 24.0

	// PlantListStartY 植物列表左上角 Y 坐标（上方留给状态栏）
	PlantListStartY = 96.0

	// PlantRowHeight 每行植物的高度
	PlantRowHeight = 44.0

	// StatBarWidth 健康/生长/病害条的宽度
	StatBarWidth = 120.0

	// StatBarHeight 状态条高度
	StatBarHeight = 6.0

	// StatBarStartX 状态条起始 X 坐标（文字列右侧）
	StatBarStartX = 520.0

	// FooterY 底部按钮栏 Y 坐标
	FooterY = GameWindowHeight - 64
)

// Button Bar Configuration (按钮栏配置)
const (
	// DebugGlyphWidth 调试字体每个字符的宽度
	DebugGlyphWidth = 6.0

	// ButtonHeight 按钮高度
	ButtonHeight = 16.0

	// ButtonPadding 按钮文字左右内边距
	ButtonPadding = 6.0

	// ButtonGap 相邻按钮间距
	ButtonGap = 8.0
)

// MaxVisiblePlantRows 列表区可容纳的行数
func MaxVisiblePlantRows() int {
	return int((float64(FooterY) - PlantListStartY) / PlantRowHeight)
}

// PlantRowY 返回第 row 个可见行的 Y 坐标
func PlantRowY(row int) float64 {
	return PlantListStartY + float64(row)*PlantRowHeight
}
