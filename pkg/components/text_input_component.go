package components

// TextInputComponent 单行文本输入框状态（登录页的邮箱、钱包地址）
//
// 只保存文本和光标，按键到编辑操作的映射由场景负责，
// 这样编辑逻辑可以脱离 ebiten 输入单独测试。
type TextInputComponent struct {
	Label       string // 输入框标签
	Text        string // 当前输入的文本
	Placeholder string // 占位符文本（输入框为空时显示）

	CursorPosition   int     // 光标位置（字符索引）
	CursorVisible    bool    // 光标是否可见（闪烁效果）
	CursorBlinkTimer float64 // 光标闪烁计时器（秒）

	MaxLength int               // 最大字符数（0 = 无限制）
	Accept    func(r rune) bool // 字符过滤器，nil 时接受所有可打印字符

	IsFocused bool // 是否获得焦点（接收键盘输入）
}

// cursorBlinkInterval 光标闪烁间隔（秒）
const cursorBlinkInterval = 0.5

// NewTextInput 创建输入框
func NewTextInput(label string, maxLength int, accept func(r rune) bool) *TextInputComponent {
	return &TextInputComponent{
		Label:         label,
		MaxLength:     maxLength,
		Accept:        accept,
		CursorVisible: true,
	}
}

// EmailRune 邮箱允许的字符
func EmailRune(r rune) bool {
	return isAlnum(r) || r == '@' || r == '.' || r == '_' || r == '-' || r == '+'
}

// HexAddressRune 十六进制地址允许的字符（含 0x 前缀的 x）
func HexAddressRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F') || r == 'x' || r == 'X'
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Insert 在光标位置插入文本，过滤不允许的字符，超过最大长度的部分丢弃
//
// 返回：
//   - int: 实际插入的字符数
func (t *TextInputComponent) Insert(text string) int {
	runes := []rune(t.Text)
	inserted := make([]rune, 0, len(text))
	for _, r := range text {
		if r < 0x20 || r == 0x7f {
			continue
		}
		if t.Accept != nil && !t.Accept(r) {
			continue
		}
		if t.MaxLength > 0 && len(runes)+len(inserted) >= t.MaxLength {
			break
		}
		inserted = append(inserted, r)
	}
	if len(inserted) == 0 {
		return 0
	}

	pos := t.clampedCursor(len(runes))
	result := make([]rune, 0, len(runes)+len(inserted))
	result = append(result, runes[:pos]...)
	result = append(result, inserted...)
	result = append(result, runes[pos:]...)

	t.Text = string(result)
	t.CursorPosition = pos + len(inserted)
	t.resetBlink()
	return len(inserted)
}

// Backspace 删除光标前的字符
func (t *TextInputComponent) Backspace() {
	runes := []rune(t.Text)
	pos := t.clampedCursor(len(runes))
	if pos == 0 {
		return
	}
	t.Text = string(append(runes[:pos-1:pos-1], runes[pos:]...))
	t.CursorPosition = pos - 1
	t.resetBlink()
}

// Delete 删除光标后的字符
func (t *TextInputComponent) Delete() {
	runes := []rune(t.Text)
	pos := t.clampedCursor(len(runes))
	if pos >= len(runes) {
		return
	}
	t.Text = string(append(runes[:pos:pos], runes[pos+1:]...))
	t.resetBlink()
}

// MoveCursor 移动光标，delta 为负时左移
func (t *TextInputComponent) MoveCursor(delta int) {
	t.CursorPosition = t.clampedCursor(len([]rune(t.Text))) + delta
	t.CursorPosition = t.clampedCursor(len([]rune(t.Text)))
	t.resetBlink()
}

// MoveCursorToEnd 光标移到结尾
func (t *TextInputComponent) MoveCursorToEnd() {
	t.CursorPosition = len([]rune(t.Text))
	t.resetBlink()
}

// Blink 更新光标闪烁状态
func (t *TextInputComponent) Blink(deltaTime float64) {
	if !t.IsFocused {
		t.CursorVisible = false
		return
	}
	t.CursorBlinkTimer += deltaTime
	if t.CursorBlinkTimer >= cursorBlinkInterval {
		t.CursorBlinkTimer = 0
		t.CursorVisible = !t.CursorVisible
	}
}

// Display 返回用于绘制的文本（空文本显示占位符，聚焦时带光标）
func (t *TextInputComponent) Display() string {
	if t.Text == "" && !t.IsFocused {
		return t.Placeholder
	}
	if !t.IsFocused || !t.CursorVisible {
		return t.Text
	}
	runes := []rune(t.Text)
	pos := t.clampedCursor(len(runes))
	return string(runes[:pos]) + "|" + string(runes[pos:])
}

func (t *TextInputComponent) clampedCursor(n int) int {
	return max(0, min(t.CursorPosition, n))
}

// resetBlink 输入时光标应该可见
func (t *TextInputComponent) resetBlink() {
	t.CursorBlinkTimer = 0
	t.CursorVisible = true
}
