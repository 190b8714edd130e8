package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/garden/pkg/app"
	"github.com/decker502/garden/pkg/config"
	"github.com/decker502/garden/pkg/embedded"
)

var (
	// 命令行参数
	verbose    = flag.Bool("verbose", false, "显示详细日志")
	configPath = flag.String("config", "", "花园配置文件路径（默认使用内置 data/garden.yaml）")
	appName    = flag.String("app", app.DefaultAppName, "存档空间名称（不同名称互不影响）")
	email      = flag.String("email", "", "启动时登录的邮箱（需同时指定 --wallet）")
	wallet     = flag.String("wallet", "", "钱包地址")
	rpcURL     = flag.String("rpc", "", "EVM JSON-RPC 节点地址（需设置 GARDEN_PRIVATE_KEY 环境变量）")
	treasury   = flag.String("treasury", "", "杀虫剂收款地址（覆盖配置文件）")
	fakeWallet = flag.Bool("fake-wallet", false, "使用内存钱包离线演示购买流程")
)

func main() {
	flag.Parse()

	// 私钥只从环境变量读取，避免出现在进程列表中
	privateKey := os.Getenv("GARDEN_PRIVATE_KEY")

	// 初始化嵌入资源
	embedded.Init(dataFS)

	gameApp, err := app.NewApp(app.Config{
		Verbose:       *verbose,
		AppName:       *appName,
		ConfigPath:    *configPath,
		Email:         *email,
		Wallet:        *wallet,
		RPCURL:        *rpcURL,
		PrivateKeyHex: privateKey,
		Treasury:      *treasury,
		FakeWallet:    *fakeWallet,
	})
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("游戏初始化失败: %v", err)
	}

	ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
	ebiten.SetWindowTitle("Virtual Garden")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	runErr := ebiten.RunGame(gameApp)

	// 窗口关闭后保存花园
	gameApp.Close()

	if runErr != nil {
		log.SetOutput(os.Stderr)
		log.Fatal(runErr)
	}
}
