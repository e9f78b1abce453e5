package lyrics

import (
	"fmt"
	"sort"
	"strings"
)

// Format 将解析结果重新输出为 LRC 文本：偏移指令、ID 标签，然后每行一个 [mm:ss.fff]
// 对 Parse 的结果满足 Parse(Format(p)) 得到相同的行和偏移
func Format(p Parsed) string {
	var sb strings.Builder
	if p.OffsetMs != 0 {
		fmt.Fprintf(&sb, "[offset:%d]\n", p.OffsetMs)
	}

	keys := make([]string, 0, len(p.Tags))
	for k := range p.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "[%s:%s]\n", k, p.Tags[k])
	}

	for _, line := range p.Lines {
		sb.WriteString(FormatTag(line.TimeMs))
		sb.WriteString(line.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatTag 将毫秒输出为 [mm:ss.fff] 标签，负数按 0 处理
func FormatTag(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	millis := ms % 1000
	return fmt.Sprintf("[%02d:%02d.%03d]", minutes, seconds, millis)
}
