package scenes

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/garden/pkg/components"
	"github.com/decker502/garden/pkg/config"
	"github.com/decker502/garden/pkg/game"
	"github.com/decker502/garden/pkg/systems"
	"github.com/decker502/garden/pkg/types"
	"github.com/decker502/garden/pkg/utils"
)

// gardenAction 花园场景中玩家可以触发的操作
type gardenAction int

const (
	actionNone gardenAction = iota
	actionSelectPrev
	actionSelectNext
	actionWater
	actionPesticide
	actionAddPlant
	actionBuyWater
	actionBuyPesticide
	actionCheckBalance
	actionSignOut
)

const (
	// purchaseTimeout 等待支付确认的最长时间
	purchaseTimeout = 3 * time.Minute

	// maxPending 同时进行的后台调用上限（等于结果通道容量，发送永不阻塞）
	maxPending = 4
)

// actionKeys 按键到操作的映射
var actionKeys = []struct {
	key    ebiten.Key
	action gardenAction
}{
	{ebiten.KeyArrowUp, actionSelectPrev},
	{ebiten.KeyArrowDown, actionSelectNext},
	{ebiten.KeyW, actionWater},
	{ebiten.KeyP, actionPesticide},
	{ebiten.KeyB, actionBuyWater},
	{ebiten.KeyS, actionBuyPesticide},
	{ebiten.KeyM, actionCheckBalance},
	{ebiten.KeyO, actionSignOut},
}

// plantKeys 数字键 1-5 对应的植物类型
var plantKeys = map[ebiten.Key]types.PlantType{
	ebiten.Key1: types.PlantSunflower,
	ebiten.Key2: types.PlantRose,
	ebiten.Key3: types.PlantCactus,
	ebiten.Key4: types.PlantBonsai,
	ebiten.Key5: types.PlantOrchid,
}

var (
	backgroundColor = color.RGBA{R: 34, G: 68, B: 40, A: 255}
	selectedColor   = color.RGBA{R: 70, G: 110, B: 60, A: 255}
	barTrackColor   = color.RGBA{R: 20, G: 30, B: 20, A: 255}
	healthColor     = color.RGBA{R: 90, G: 200, B: 90, A: 255}
	growthColor     = color.RGBA{R: 230, G: 200, B: 60, A: 255}
	diseaseColor    = color.RGBA{R: 200, G: 70, B: 60, A: 255}
	tickBarColor    = color.RGBA{R: 120, G: 160, B: 220, A: 255}
	buttonColor     = color.RGBA{R: 52, G: 90, B: 58, A: 255}
)

// GardenScene 花园主场景
//
// 职责：
//   - 读取键盘输入，调用 GardenSession 的操作
//   - 通过 TickScheduler 驱动模拟 tick
//   - 支付类操作在后台 goroutine 中执行，结果通过通道回到 Update
type GardenScene struct {
	session   *game.GardenSession
	scheduler *game.TickScheduler
	onSignOut func()

	selected int
	closed   bool // 会话已在登出时保存
	buttons  []actionButton

	message    string
	messageTTL float64

	pending int         // 进行中的后台调用数
	results chan string // 后台调用的结果提示
}

// NewGardenScene 创建花园场景
//
// 参数：
//   - session: 花园会话
//   - clock: 时钟，nil 时使用 time.Now
//   - onSignOut: 玩家登出后的回调（切换回登录场景），可为 nil
func NewGardenScene(session *game.GardenSession, clock func() time.Time, onSignOut func()) *GardenScene {
	s := &GardenScene{
		session:   session,
		onSignOut: onSignOut,
		results:   make(chan string, maxPending),
		buttons:   actionButtons(),
	}
	s.scheduler = game.NewTickScheduler(session, session.Config().Rules.TickInterval, clock)
	s.scheduler.OnTick = func(report systems.TickReport) {
		if msg := tickMessage(report); msg != "" {
			s.showMessage(msg)
		}
	}
	log.Printf("[GardenScene] Created (level %d)", session.Level().ID)
	return s
}

// Update 处理输入、后台结果和 tick
func (s *GardenScene) Update(deltaTime float64) {
	s.handleInput()
	s.drainResults()
	s.scheduler.Update(deltaTime)

	if s.messageTTL > 0 {
		s.messageTTL -= deltaTime
		if s.messageTTL <= 0 {
			s.message = ""
		}
	}
}

func (s *GardenScene) handleInput() {
	for _, k := range actionKeys {
		if inpututil.IsKeyJustPressed(k.key) {
			s.perform(k.action, types.PlantUnknown)
		}
	}
	for key, plantType := range plantKeys {
		if inpututil.IsKeyJustPressed(key) {
			s.perform(actionAddPlant, plantType)
		}
	}
	if pressed, x, y := utils.IsJustTouchedOrClicked(); pressed {
		s.handlePointer(x, y)
	}
}

// handlePointer 处理鼠标点击和触摸：按钮触发操作，植物行切换选中
func (s *GardenScene) handlePointer(x, y int) {
	if b, ok := buttonAt(s.buttons, x, y); ok {
		s.perform(b.action, b.plant)
		return
	}

	total := len(s.session.Snapshot().Plants)
	start, end := visibleRange(s.selected, total, config.MaxVisiblePlantRows())
	if idx, ok := plantRowAt(y, start, end); ok {
		s.selected = idx
	}
}

// perform 执行一个操作
//
// 参数：
//   - action: 操作
//   - plantType: actionAddPlant 的植物类型，其他操作忽略
func (s *GardenScene) perform(action gardenAction, plantType types.PlantType) {
	switch action {
	case actionSelectPrev:
		s.selected = max(0, s.selected-1)
	case actionSelectNext:
		s.selected = min(s.selected+1, max(0, len(s.session.Snapshot().Plants)-1))
	case actionWater:
		id, ok := s.selectedPlantID()
		if !ok {
			s.showMessage("Plant something first (keys 1-5)")
			return
		}
		up, err := s.session.Water(id)
		switch {
		case err != nil:
			s.showMessage("Cannot water: " + errorMessage(err))
		case up != nil:
			s.showMessage(levelUpMessage(up))
		default:
			s.showMessage("Watered")
		}
	case actionPesticide:
		id, ok := s.selectedPlantID()
		if !ok {
			return
		}
		if err := s.session.ApplyPesticide(id); err != nil {
			s.showMessage("Cannot apply pesticide: " + errorMessage(err))
			return
		}
		s.showMessage("Pesticide applied")
	case actionAddPlant:
		plant, err := s.session.AddPlant(plantType)
		if err != nil {
			s.showMessage("Cannot plant: " + errorMessage(err))
			return
		}
		s.selected = max(0, len(s.session.Snapshot().Plants)-1)
		s.showMessage(fmt.Sprintf("Planted a %s", s.session.Config().Traits(plant.Type).Name))
	case actionBuyWater:
		if err := s.session.BuyWater(); err != nil {
			s.showMessage("Cannot buy water: " + errorMessage(err))
			return
		}
		s.showMessage("Water refilled")
	case actionBuyPesticide:
		s.showMessage(fmt.Sprintf("Buying pesticide for %s, confirm in your wallet...",
			config.FormatNativeAmount(s.session.Config().Rules.PesticidePriceWei())))
		s.runAsync(func(ctx context.Context) string {
			return purchaseMessage(s.session.BuyPesticide(ctx))
		})
	case actionCheckBalance:
		s.runAsync(func(ctx context.Context) string {
			return balanceMessage(s.session.WalletBalance(ctx))
		})
	case actionSignOut:
		s.signOut()
	}
}

// runAsync 在后台执行阻塞调用
func (s *GardenScene) runAsync(call func(ctx context.Context) string) {
	if s.pending >= maxPending {
		s.showMessage("Too many requests in flight, please wait")
		return
	}
	s.pending++
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), purchaseTimeout)
		defer cancel()
		s.results <- call(ctx)
	}()
}

func (s *GardenScene) drainResults() {
	for {
		select {
		case msg := <-s.results:
			s.pending--
			s.showMessage(msg)
		default:
			return
		}
	}
}

func (s *GardenScene) signOut() {
	if err := s.session.Close(); err != nil {
		log.Printf("[GardenScene] Warning: Failed to save garden on sign out: %v", err)
	}
	// 登出后 ownerID 为空，不能再保存，否则会覆盖该玩家的快照
	s.closed = true
	s.session.Profiles().SignOut()
	log.Printf("[GardenScene] Signed out")
	if s.onSignOut != nil {
		s.onSignOut()
	}
}

func (s *GardenScene) selectedPlantID() (string, bool) {
	plants := s.session.Snapshot().Plants
	if len(plants) == 0 {
		return "", false
	}
	s.selected = min(s.selected, len(plants)-1)
	return plants[s.selected].ID, true
}

func (s *GardenScene) showMessage(msg string) {
	s.message = msg
	s.messageTTL = messageDuration.Seconds()
}

// SaveOnExit 实现 game.Saveable 接口
func (s *GardenScene) SaveOnExit() bool {
	if s.closed {
		return true
	}
	if err := s.session.Close(); err != nil {
		log.Printf("[GardenScene] Warning: Failed to save garden on exit: %v", err)
		return false
	}
	return true
}

// Draw 绘制花园
func (s *GardenScene) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	state := s.session.Snapshot()
	level := s.session.Level()
	profile := s.session.Profiles().CurrentUser()
	cfg := s.session.Config()

	for i, line := range headerLines(state, level, s.session.RemainingWater(), profile) {
		ebitenutil.DebugPrintAt(screen, line, int(config.PlantListStartX), 12+i*16)
	}
	ebitenutil.DebugPrintAt(screen, achievementLine(profile), int(config.PlantListStartX), 44)

	// 下一次 tick 的进度
	vector.DrawFilledRect(screen, float32(config.PlantListStartX), 66, float32(config.StatBarWidth), 3, barTrackColor, false)
	vector.DrawFilledRect(screen, float32(config.PlantListStartX), 66, float32(config.StatBarWidth*s.scheduler.Progress()), 3, tickBarColor, false)

	if len(state.Plants) == 0 {
		ebitenutil.DebugPrintAt(screen, "Your garden is empty. Press 1-5 to plant a seed.", int(config.PlantListStartX), int(config.PlantListStartY))
	}

	start, end := visibleRange(s.selected, len(state.Plants), config.MaxVisiblePlantRows())
	for i := start; i < end; i++ {
		s.drawPlantRow(screen, state.Plants[i], i-start, i == s.selected, cfg)
	}

	for _, b := range s.buttons {
		r := b.rect
		vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), buttonColor, false)
		ebitenutil.DebugPrintAt(screen, b.label, int(r.X+config.ButtonPadding), int(r.Y))
	}

	msg := s.message
	if s.pending > 0 && msg == "" {
		msg = "Waiting for confirmation..."
	}
	if msg != "" {
		ebitenutil.DebugPrintAt(screen, msg, int(config.PlantListStartX), config.FooterY+44)
	}
}

func (s *GardenScene) drawPlantRow(screen *ebiten.Image, p components.Plant, row int, selected bool, cfg *config.GardenConfig) {
	y := config.PlantRowY(row)
	if selected {
		vector.DrawFilledRect(screen, float32(config.PlantListStartX-8), float32(y-4),
			float32(config.GameWindowWidth-2*config.PlantListStartX+16), float32(config.PlantRowHeight-4), selectedColor, false)
	}
	ebitenutil.DebugPrintAt(screen, plantLine(p, cfg), int(config.PlantListStartX), int(y))

	drawStatBar(screen, y+4, float64(p.Health)/components.MaxHealth, healthColor)
	drawStatBar(screen, y+14, p.Growth/components.MaxGrowth, growthColor)
	drawStatBar(screen, y+24, float64(p.DiseaseLevel)/components.MaxDiseaseLevel, diseaseColor)
}

func drawStatBar(screen *ebiten.Image, y, ratio float64, clr color.Color) {
	ratio = max(0, min(1, ratio))
	x := float32(config.StatBarStartX)
	vector.DrawFilledRect(screen, x, float32(y), float32(config.StatBarWidth), float32(config.StatBarHeight), barTrackColor, false)
	vector.DrawFilledRect(screen, x, float32(y), float32(config.StatBarWidth*ratio), float32(config.StatBarHeight), clr, false)
}
