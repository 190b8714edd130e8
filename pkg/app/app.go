// Package app 提供游戏应用的核心包装器
//
// 该包将游戏初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log"
	"math/big"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/garden/internal/chain"
	"github.com/decker502/garden/pkg/config"
	"github.com/decker502/garden/pkg/embedded"
	"github.com/decker502/garden/pkg/game"
	"github.com/decker502/garden/pkg/scenes"
	"github.com/decker502/garden/pkg/utils"
)

// DefaultAppName gdata 应用空间名称
const DefaultAppName = "virtual_garden"

// 离线演示钱包
const (
	demoWallet   = "0x000000000000000000000000000000000000dEaD"
	demoTreasury = "0x00000000000000000000000000000000000Ca5e0"
)

// dialTimeout 连接 JSON-RPC 节点的超时
const dialTimeout = 15 * time.Second

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// AppName gdata 应用空间名称，为空时使用 DefaultAppName
	AppName string
	// ConfigPath 花园配置文件路径，为空时使用嵌入的 data/garden.yaml
	ConfigPath string

	// Email 和 Wallet 同时提供时启动即登录，跳过登录场景
	Email  string
	Wallet string

	// RPCURL 和 PrivateKeyHex 同时提供时使用链上支付网关
	RPCURL        string
	PrivateKeyHex string
	// Treasury 覆盖配置中的收款地址
	Treasury string
	// FakeWallet 使用内存支付网关（离线演示）
	FakeWallet bool
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager  *game.SceneManager
	gardenConfig  *config.GardenConfig
	profiles      *game.ProfileStore
	saves         *game.GardenSaveStore
	gateway       game.PaymentGateway
	defaultWallet string
	verbose       bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化游戏应用
//
// 调用此函数前，应先调用 embedded.Init() 初始化嵌入资源；
// 未初始化时使用内置默认配置。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	gardenConfig, err := loadGardenConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("花园配置加载失败: %w", err)
	}
	if cfg.Treasury != "" {
		gardenConfig.Rules.Treasury = cfg.Treasury
	}

	gdataManager := openStorage(cfg.AppName)

	a := &App{
		sceneManager:  game.NewSceneManager(),
		gardenConfig:  gardenConfig,
		profiles:      game.NewProfileStore(gdataManager),
		saves:         game.NewGardenSaveStore(gdataManager),
		defaultWallet: cfg.Wallet,
		verbose:       cfg.Verbose,
	}

	if err := a.setupGateway(cfg); err != nil {
		return nil, err
	}

	if cfg.Email != "" && cfg.Wallet != "" {
		if _, err := a.profiles.SignIn(cfg.Email, cfg.Wallet); err != nil {
			return nil, fmt.Errorf("登录失败: %w", err)
		}
	}

	a.sceneManager.SetSceneFactory(a.createScene)
	if a.profiles.IsAuthenticated() {
		a.sceneManager.Load(game.SceneGarden)
	} else {
		a.sceneManager.Load(game.SceneSignIn)
	}
	return a, nil
}

// loadGardenConfig 加载花园配置
//
// 优先级：命令行指定的文件 > 嵌入的 data/garden.yaml > 内置默认值
func loadGardenConfig(path string) (*config.GardenConfig, error) {
	if path != "" {
		log.Printf("[App] Loading garden config from %s", path)
		return config.LoadGardenConfig(path)
	}

	if !embedded.IsInitialized() || !embedded.Exists(config.DefaultGardenConfigPath) {
		log.Printf("[App] Embedded config not available, using built-in defaults")
		return config.DefaultGardenConfig(), nil
	}

	data, err := embedded.ReadFile(config.DefaultGardenConfigPath)
	if err != nil {
		return nil, err
	}
	return config.ParseGardenConfig(data)
}

// openStorage 打开 gdata 存储
// 失败时返回 nil，档案和花园进入不落盘的降级模式
func openStorage(appName string) *gdata.Manager {
	if appName == "" {
		appName = DefaultAppName
	}

	if err := utils.EnsureStorageDir(appName); err != nil {
		log.Printf("[App] Warning: Failed to prepare storage dir: %v", err)
	}

	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[App] Warning: Failed to open gdata storage: %v (progress will not be saved)", err)
		return nil
	}
	return m
}

// setupGateway 根据启动参数选择支付网关
func (a *App) setupGateway(cfg Config) error {
	switch {
	case cfg.RPCURL != "" && cfg.PrivateKeyHex != "":
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()

		client, err := chain.Dial(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("连接节点失败: %w", err)
		}
		gw, err := chain.NewEthereumGateway(client, cfg.PrivateKeyHex)
		if err != nil {
			return fmt.Errorf("钱包初始化失败: %w", err)
		}
		a.gateway = gw
		if a.defaultWallet == "" {
			a.defaultWallet = gw.Address()
		}
		log.Printf("[App] Using on-chain payment gateway via %s", cfg.RPCURL)

	case cfg.FakeWallet:
		if a.defaultWallet == "" {
			a.defaultWallet = demoWallet
		}
		fake := game.NewFakeGateway()
		fake.SetBalance(a.defaultWallet, new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18)))
		a.gateway = fake
		if a.gardenConfig.Rules.Treasury == "" {
			a.gardenConfig.Rules.Treasury = demoTreasury
		}
		log.Printf("[App] Using in-memory payment gateway (demo wallet %s)", a.defaultWallet)

	default:
		log.Printf("[App] No payment gateway configured, pesticide purchases disabled")
	}
	return nil
}

// createScene 场景工厂
func (a *App) createScene(name string) game.Scene {
	switch name {
	case game.SceneSignIn:
		return scenes.NewSignInScene(a.profiles, a.defaultWallet, func(*game.UserProfile) {
			a.sceneManager.Load(game.SceneGarden)
		})
	case game.SceneGarden:
		session := game.NewGardenSession(a.gardenConfig, game.SessionDeps{
			Profiles: a.profiles,
			Saves:    a.saves,
			Gateway:  a.gateway,
		})
		return scenes.NewGardenScene(session, nil, func() {
			a.sceneManager.Load(game.SceneSignIn)
		})
	}
	return nil
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if !utils.IsMobile() && inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.sceneManager.Update(deltaTime)
	return nil
}

// Draw 绘制游戏画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回游戏的逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.GameWindowWidth, config.GameWindowHeight
}

// Close 保存当前场景的状态（窗口关闭后调用）
func (a *App) Close() {
	if saveable, ok := a.sceneManager.GetCurrentScene().(game.Saveable); ok {
		if saveable.SaveOnExit() {
			log.Printf("[App] Saved on exit")
		}
	}
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
