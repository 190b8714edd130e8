package scenes

import (
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/garden/pkg/components"
	"github.com/decker502/garden/pkg/game"
	"github.com/decker502/garden/pkg/utils"
)

// 输入框长度限制
const (
	maxEmailLength  = 64
	maxWalletLength = 42 // 0x + 40 位十六进制
)

// 登录表单布局
const (
	formX      = 200
	formWidth  = 400
	fieldTop   = 210
	fieldPitch = 60
)

// submitButton 登录按钮区域
var submitButton = utils.HitRect{X: formX, Y: 330, W: 84, H: 20}

var (
	signInBackground = color.RGBA{R: 24, G: 48, B: 30, A: 255}
	fieldColor       = color.RGBA{R: 12, G: 24, B: 16, A: 255}
	focusedColor     = color.RGBA{R: 60, G: 100, B: 60, A: 255}
)

// SignInScene 登录场景
//
// 玩家输入邮箱和钱包地址，回车提交。Tab 切换输入框。
type SignInScene struct {
	profiles   *game.ProfileStore
	onSignedIn func(*game.UserProfile)

	fields  []*components.TextInputComponent
	focused int
	errMsg  string
}

// NewSignInScene 创建登录场景
//
// 参数：
//   - profiles: 档案存储
//   - defaultWallet: 预填的钱包地址（已连接的钱包），可为空
//   - onSignedIn: 登录成功回调
func NewSignInScene(profiles *game.ProfileStore, defaultWallet string, onSignedIn func(*game.UserProfile)) *SignInScene {
	email := components.NewTextInput("Email", maxEmailLength, components.EmailRune)
	email.Placeholder = "you@example.com"

	wallet := components.NewTextInput("Wallet", maxWalletLength, components.HexAddressRune)
	wallet.Placeholder = "0x..."
	wallet.Insert(defaultWallet)

	s := &SignInScene{
		profiles:   profiles,
		onSignedIn: onSignedIn,
		fields:     []*components.TextInputComponent{email, wallet},
	}
	s.focus(0)
	return s
}

func (s *SignInScene) focus(i int) {
	s.focused = i
	for j, f := range s.fields {
		f.IsFocused = j == i
		if f.IsFocused {
			f.MoveCursorToEnd()
		}
	}
}

// Update 处理键盘输入
func (s *SignInScene) Update(deltaTime float64) {
	field := s.fields[s.focused]
	field.Blink(deltaTime)

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		s.focus((s.focused + 1) % len(s.fields))
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) {
		s.submit()
		return
	}
	if pressed, x, y := utils.IsJustTouchedOrClicked(); pressed {
		s.handlePointer(x, y)
		return
	}

	if runes := ebiten.AppendInputChars(nil); len(runes) > 0 {
		field.Insert(string(runes))
	}

	// 第 1 帧立即响应，按住 30 帧后每 3 帧重复一次
	if repeating(inpututil.KeyPressDuration(ebiten.KeyBackspace)) {
		field.Backspace()
	}
	if repeating(inpututil.KeyPressDuration(ebiten.KeyDelete)) {
		field.Delete()
	}
	if repeating(inpututil.KeyPressDuration(ebiten.KeyArrowLeft)) {
		field.MoveCursor(-1)
	}
	if repeating(inpututil.KeyPressDuration(ebiten.KeyArrowRight)) {
		field.MoveCursor(1)
	}
}

// handlePointer 点击输入框切换焦点，点击按钮提交
func (s *SignInScene) handlePointer(x, y int) {
	if submitButton.Contains(x, y) {
		s.submit()
		return
	}
	for i := range s.fields {
		if fieldRect(i).Contains(x, y) {
			s.focus(i)
			return
		}
	}
}

// fieldRect 第 i 个输入框的区域
func fieldRect(i int) utils.HitRect {
	return utils.HitRect{X: formX, Y: float64(fieldTop + i*fieldPitch + 18), W: formWidth, H: 22}
}

func repeating(duration int) bool {
	return duration == 1 || (duration >= 30 && duration%3 == 0)
}

// submit 提交登录
func (s *SignInScene) submit() {
	profile, err := s.profiles.SignIn(s.fields[0].Text, s.fields[1].Text)
	if err != nil {
		s.errMsg = "Cannot sign in: " + errorMessage(err)
		log.Printf("[SignInScene] Sign in failed: %v", err)
		return
	}

	s.errMsg = ""
	log.Printf("[SignInScene] Signed in as %s", profile.Username)
	if s.onSignedIn != nil {
		s.onSignedIn(profile)
	}
}

// Draw 绘制登录表单
func (s *SignInScene) Draw(screen *ebiten.Image) {
	screen.Fill(signInBackground)

	ebitenutil.DebugPrintAt(screen, "Virtual Garden", formX, 140)
	ebitenutil.DebugPrintAt(screen, "Sign in with your email and wallet address", formX, 160)

	for i, f := range s.fields {
		r := fieldRect(i)
		ebitenutil.DebugPrintAt(screen, f.Label, formX, int(r.Y)-18)
		bg := fieldColor
		if f.IsFocused {
			bg = focusedColor
		}
		vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), bg, false)
		ebitenutil.DebugPrintAt(screen, f.Display(), int(r.X)+6, int(r.Y)+3)
	}

	r := submitButton
	vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), focusedColor, false)
	ebitenutil.DebugPrintAt(screen, "Sign in", int(r.X)+20, int(r.Y)+2)
	ebitenutil.DebugPrintAt(screen, "[Tab] next field  [Enter] sign in", formX+100, int(r.Y)+2)

	if s.errMsg != "" {
		ebitenutil.DebugPrintAt(screen, s.errMsg, formX, 370)
	}
}
