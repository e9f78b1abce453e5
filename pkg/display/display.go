package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/yleoer/lrcplayer/pkg/tracker"
	"github.com/yleoer/lrcplayer/pkg/util"
)

// Placeholder 空歌词行的显示文本
const Placeholder = "♪"

// Renderer 接收当前行变化后的视图
type Renderer interface {
	Render(v tracker.View)
}

// TerminalRenderer 把当前行及其前后几行逐块写到终端
type TerminalRenderer struct {
	mu           sync.Mutex
	out          io.Writer
	contextLines int
	activeStyle  lipgloss.Style
	dimStyle     lipgloss.Style
	headerStyle  lipgloss.Style
}

// NewTerminalRenderer 创建渲染器；颜色能力按 out 检测，非终端输出纯文本
func NewTerminalRenderer(out io.Writer, contextLines int) *TerminalRenderer {
	r := lipgloss.NewRenderer(out)
	return &TerminalRenderer{
		out:          out,
		contextLines: contextLines,
		activeStyle:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		dimStyle:     r.NewStyle().Faint(true),
		headerStyle:  r.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

// Render 实现 Renderer
func (r *TerminalRenderer) Render(v tracker.View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.out, r.Block(v))
}

// Block 返回一次渲染的文本
func (r *TerminalRenderer) Block(v tracker.View) string {
	var sb strings.Builder
	if v.State == tracker.StateNoLyrics || len(v.Lines) == 0 {
		sb.WriteString(r.headerStyle.Render("(no lyrics)"))
		sb.WriteByte('\n')
		return sb.String()
	}

	header := fmt.Sprintf("-- %s  [%d/%d]", util.FormatTimestamp(v.EffectiveMs), v.Index+1, len(v.Lines))
	if v.FileOffsetMs != 0 || v.UserOffsetMs != 0 {
		header += fmt.Sprintf("  offset %+dms", v.FileOffsetMs+v.UserOffsetMs)
	}
	sb.WriteString(r.headerStyle.Render(header + " --"))
	sb.WriteByte('\n')

	from, to := Window(len(v.Lines), v.Index, r.contextLines)
	for i := from; i <= to; i++ {
		text := LineText(v.Lines[i].Text)
		if i == v.Index {
			sb.WriteString("> " + r.activeStyle.Render(text))
		} else {
			sb.WriteString("  " + r.dimStyle.Render(text))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// LineText 空文本显示为占位符
func LineText(text string) string {
	if strings.TrimSpace(text) == "" {
		return Placeholder
	}
	return text
}

// Window 返回以 index 为中心、前后各 n 行的闭区间，超出范围时截断
func Window(total, index, n int) (from, to int) {
	if total == 0 {
		return 0, -1
	}
	if index < 0 {
		index = 0
	}
	if index > total-1 {
		index = total - 1
	}
	from, to = index-n, index+n
	if from < 0 {
		from = 0
	}
	if to > total-1 {
		to = total - 1
	}
	return from, to
}
