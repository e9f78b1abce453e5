package lyrics

import "sort"

// NoLine 表示没有可用的歌词行
const NoLine = -1

// FindActiveIndex 返回最后一个 TimeMs <= timeMs 的行的下标
// 没有歌词时返回 NoLine；时间早于第一行时钳制为 0，晚于最后一行时钳制为最后一行
// 对任意查询时间都成立，不假设时间只会向前走（拖动进度条可以后退）
func FindActiveIndex(lines []Line, timeMs int64) int {
	n := len(lines)
	if n == 0 {
		return NoLine
	}
	// 上界查找：第一个 TimeMs > timeMs 的位置
	upper := sort.Search(n, func(i int) bool {
		return lines[i].TimeMs > timeMs
	})
	return clamp(upper-1, 0, n-1)
}

// StableIndex 在 FindActiveIndex 的基础上，向后越过紧随其后的相同时间戳的行，取这一段的最后一行
// Parse 已经保证时间戳唯一；这里处理来自其他来源的行序列
func StableIndex(lines []Line, timeMs int64) int {
	idx := FindActiveIndex(lines, timeMs)
	if idx == NoLine {
		return idx
	}
	for idx+1 < len(lines) && lines[idx+1].TimeMs == lines[idx].TimeMs {
		idx++
	}
	return idx
}

// EffectiveTime 播放时间加上文件偏移和用户偏移，即与歌词时间戳比较的时间
func EffectiveTime(playbackMs, fileOffsetMs, userOffsetMs int64) int64 {
	return playbackMs + fileOffsetMs + userOffsetMs
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
