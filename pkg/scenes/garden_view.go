package scenes

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/decker502/garden/pkg/components"
	"github.com/decker502/garden/pkg/config"
	"github.com/decker502/garden/pkg/game"
	"github.com/decker502/garden/pkg/systems"
	"github.com/decker502/garden/pkg/types"
	"github.com/decker502/garden/pkg/utils"
)

// actionButton 按钮栏中的一个按钮（鼠标点击和触摸共用）
type actionButton struct {
	label  string
	action gardenAction
	plant  types.PlantType
	rect   utils.HitRect
}

// actionButtons 按钮栏布局：第一行是操作，第二行是种植
func actionButtons() []actionButton {
	rows := [][]actionButton{
		{
			{label: "W Water", action: actionWater},
			{label: "P Pesticide", action: actionPesticide},
			{label: "B Buy water", action: actionBuyWater},
			{label: "S Buy pesticide", action: actionBuyPesticide},
			{label: "M Balance", action: actionCheckBalance},
			{label: "O Sign out", action: actionSignOut},
		},
		{
			{label: "1 Sunflower", action: actionAddPlant, plant: types.PlantSunflower},
			{label: "2 Rose", action: actionAddPlant, plant: types.PlantRose},
			{label: "3 Cactus*", action: actionAddPlant, plant: types.PlantCactus},
			{label: "4 Bonsai*", action: actionAddPlant, plant: types.PlantBonsai},
			{label: "5 Orchid", action: actionAddPlant, plant: types.PlantOrchid},
		},
	}

	var buttons []actionButton
	for i, row := range rows {
		x := config.PlantListStartX
		y := float64(config.FooterY) + float64(i)*(config.ButtonHeight+4)
		for _, b := range row {
			w := float64(len(b.label))*config.DebugGlyphWidth + 2*config.ButtonPadding
			b.rect = utils.HitRect{X: x, Y: y, W: w, H: config.ButtonHeight}
			buttons = append(buttons, b)
			x += w + config.ButtonGap
		}
	}
	return buttons
}

// buttonAt 返回点击位置上的按钮
func buttonAt(buttons []actionButton, x, y int) (actionButton, bool) {
	for _, b := range buttons {
		if b.rect.Contains(x, y) {
			return b, true
		}
	}
	return actionButton{}, false
}

// plantRowAt 返回点击位置对应的植物下标，start/end 为当前可见范围
func plantRowAt(y, start, end int) (int, bool) {
	if float64(y) < config.PlantListStartY {
		return 0, false
	}
	idx := start + int((float64(y)-config.PlantListStartY)/config.PlantRowHeight)
	if idx >= end {
		return 0, false
	}
	return idx, true
}

// plantLine 植物列表中一行的文字
func plantLine(p components.Plant, cfg *config.GardenConfig) string {
	traits := cfg.Traits(p.Type)
	name := traits.Name
	if name == "" {
		name = p.Type.String()
	}
	if traits.Rare {
		name += "*"
	}

	line := fmt.Sprintf("%-10s HP %3d  Grow %3d%%  Water %d", name, p.Health, p.GrowthPercent(), p.WaterCount)
	switch {
	case p.NeedsPesticide:
		line += "  [PESTS]"
	case p.IsFullyGrown():
		line += "  [GROWN]"
	}
	return line
}

// headerLines 状态栏文字
func headerLines(state components.GardenState, level config.GameLevel, remainingWater int, profile *game.UserProfile) []string {
	who := "not signed in"
	if profile != nil {
		who = fmt.Sprintf("%s <%s>", profile.Username, shortAddress(profile.WalletAddress))
	}

	progress := "max level"
	if !level.IsTerminal() {
		progress = fmt.Sprintf("%d / %d", state.Score, level.ScoreToNextLevel)
	}

	return []string{
		fmt.Sprintf("Level %d: %s    Score %d (%s)    Player %s", level.ID, level.Name, state.Score, progress, who),
		fmt.Sprintf("Plants %d / %d    Water left %d / %d    Pesticide %s",
			len(state.Plants), level.MaxPlants, remainingWater, level.DailyWaterLimit, lockedLabel(level.PesticideUnlocked)),
	}
}

// achievementLine 已获得的成就
func achievementLine(profile *game.UserProfile) string {
	if profile == nil || len(profile.GameStats.Achievements) == 0 {
		return "Achievements: none yet"
	}
	names := make([]string, 0, len(profile.GameStats.Achievements))
	for _, id := range profile.GameStats.Achievements {
		if a, ok := systems.FindAchievement(id); ok {
			names = append(names, a.Name)
		} else {
			names = append(names, id)
		}
	}
	return "Achievements: " + strings.Join(names, ", ")
}

func lockedLabel(unlocked bool) string {
	if unlocked {
		return "unlocked"
	}
	return "locked"
}

// shortAddress 缩写钱包地址（0x1234...abcd）
func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// visibleRange 选中行始终可见的滚动窗口 [start, end)
func visibleRange(selected, total, rows int) (int, int) {
	if rows <= 0 || total <= 0 {
		return 0, 0
	}
	if total <= rows {
		return 0, total
	}
	start := min(max(0, selected-rows/2), total-rows)
	return start, start + rows
}

// levelUpMessage 升级提示
func levelUpMessage(up *systems.LevelUp) string {
	msg := fmt.Sprintf("Level up! Welcome to %s", up.To.Name)
	if up.BonusPlant != nil {
		msg += fmt.Sprintf(" (bonus %s planted)", up.BonusPlant.Type)
	}
	return msg
}

// tickMessage tick 摘要中值得提示的事件，没有时返回空串
func tickMessage(report systems.TickReport) string {
	switch {
	case report.LevelUp != nil:
		return levelUpMessage(report.LevelUp)
	case len(report.NewlyInfested) > 0:
		return fmt.Sprintf("%d plant(s) caught pests!", len(report.NewlyInfested))
	case len(report.FullyGrown) > 0:
		return fmt.Sprintf("%d plant(s) fully grown!", len(report.FullyGrown))
	}
	return ""
}

// purchaseMessage 杀虫剂购买结果提示
func purchaseMessage(purchase *game.PesticidePurchase, err error) string {
	if err != nil {
		if purchase != nil && purchase.Confirmation != nil {
			return fmt.Sprintf("Paid (tx %s) but not applied: %s", shortAddress(purchase.Confirmation.TxHash), errorMessage(err))
		}
		return "Pesticide purchase failed: " + errorMessage(err)
	}
	return fmt.Sprintf("Pesticide applied to %d plant(s), tx %s", purchase.Treated, shortAddress(purchase.Confirmation.TxHash))
}

// balanceMessage 钱包余额提示
func balanceMessage(balance *big.Int, err error) string {
	if err != nil {
		return "Balance unavailable: " + errorMessage(err)
	}
	return "Wallet balance: " + config.FormatNativeAmount(balance)
}

// errorMessage 把错误转换为玩家可读的提示
func errorMessage(err error) string {
	var cooldown string
	if errors.Is(err, types.ErrPlantCooldown) {
		cooldown = strings.TrimPrefix(err.Error(), types.ErrPlantCooldown.Error())
	}

	switch {
	case errors.Is(err, types.ErrWaterQuotaExhausted):
		return "no water left for today"
	case errors.Is(err, types.ErrGardenFull):
		return "garden is full for this level"
	case errors.Is(err, types.ErrPlantCooldown):
		return "planting is on cooldown" + cooldown
	case errors.Is(err, types.ErrPesticideLocked):
		return "pesticide unlocks at level 2"
	case errors.Is(err, types.ErrPesticideNotNeeded):
		return "this plant has no pests"
	case errors.Is(err, types.ErrInvalidEmail):
		return "invalid email"
	case errors.Is(err, types.ErrNotSignedIn):
		return "sign in first"
	case errors.Is(err, types.ErrWalletNotConnected):
		return "wallet not connected"
	case errors.Is(err, types.ErrNoPaymentGateway):
		return "payments are not configured"
	case errors.Is(err, types.ErrPurchaseInProgress):
		return "a purchase is already in progress"
	}
	return err.Error()
}

// messageDuration 提示信息显示时长
const messageDuration = 4 * time.Second
