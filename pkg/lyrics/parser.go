package lyrics

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// 整行 [offset:+N]，不区分大小写
	offsetRegex = regexp.MustCompile(`(?i)^\[offset:([+-]?\d+)\]$`)
	// [mm:ss] 或 [mm:ss.f] / [mm:ss.ff] / [mm:ss.fff]
	timeTagRegex = regexp.MustCompile(`\[(\d{1,2}):(\d{2})(?:\.(\d{1,3}))?\]`)
	// 没有时间标签的整行 ID 标签，例如 [ti:歌名]
	idTagRegex = regexp.MustCompile(`^\[([A-Za-z]+):(.*)\]$`)
)

const utf8BOM = "\ufeff"

// Parse 将 LRC 文本解析为按时间排序、去重后的歌词行
// 这是尽力而为的格式：无法识别的内容只会让结果变少，永远不会返回错误
func Parse(text string) Parsed {
	text = strings.TrimPrefix(text, utf8BOM)

	result := Parsed{}
	offsetFound := false
	var entries []Line

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if matches := offsetRegex.FindStringSubmatch(line); len(matches) > 1 {
			if !offsetFound {
				if n, err := strconv.ParseInt(matches[1], 10, 64); err == nil {
					result.OffsetMs = n
					offsetFound = true
				}
			}
			continue
		}

		tags := timeTagRegex.FindAllStringSubmatch(line, -1)
		if len(tags) == 0 {
			if matches := idTagRegex.FindStringSubmatch(line); len(matches) > 2 && normalizeTagKey(matches[1]) != "offset" {
				if result.Tags == nil {
					result.Tags = make(map[string]string)
				}
				result.Tags[normalizeTagKey(matches[1])] = strings.TrimSpace(matches[2])
			}
			continue
		}

		lyric := strings.TrimSpace(stripTimeTags(line))
		for _, tag := range tags {
			entries = append(entries, Line{TimeMs: tagToMs(tag[1], tag[2], tag[3]), Text: lyric})
		}
	}

	result.Lines = mergeDuplicates(entries)
	return result
}

// stripTimeTags 反复去掉时间标签，直到文本里不再有能被识别为标签的内容
// 例如 "a[0[00:02]0:03]b" 去掉一次后又拼出了 [00:03]
func stripTimeTags(line string) string {
	for timeTagRegex.MatchString(line) {
		line = timeTagRegex.ReplaceAllString(line, "")
	}
	return line
}

// tagToMs 将时间标签的三段转换为毫秒
func tagToMs(minutes, seconds, fraction string) int64 {
	m, _ := strconv.ParseInt(minutes, 10, 64)
	s, _ := strconv.ParseInt(seconds, 10, 64)
	return (m*60+s)*1000 + fractionToMs(fraction)
}

// fractionToMs 按位数缩放小数部分：3 位原样，2 位乘 10，1 位乘 100
func fractionToMs(fraction string) int64 {
	if fraction == "" {
		return 0
	}
	f, _ := strconv.ParseInt(fraction, 10, 64)
	switch len(fraction) {
	case 1:
		return f * 100
	case 2:
		return f * 10
	default:
		return f
	}
}

// mergeDuplicates 稳定排序后合并相同时间戳的行
// 保留第一次出现的位置；之后非空的文本覆盖之前的，空文本不会擦掉已有文本
func mergeDuplicates(entries []Line) []Line {
	if len(entries) == 0 {
		return []Line{}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TimeMs < entries[j].TimeMs
	})

	out := make([]Line, 0, len(entries))
	for _, e := range entries {
		last := len(out) - 1
		if last >= 0 && out[last].TimeMs == e.TimeMs {
			if e.Text != "" {
				out[last].Text = e.Text
			}
			continue
		}
		out = append(out, e)
	}
	return out
}

func normalizeTagKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
