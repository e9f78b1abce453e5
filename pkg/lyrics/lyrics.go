package lyrics

// Line 代表一行带时间戳的歌词
type Line struct {
	TimeMs int64  `json:"time_ms"` // 距离曲目开始的毫秒数
	Text   string `json:"text"`    // 歌词文本，可能为空
}

// Parsed 是一次解析的结果，创建后不再修改
type Parsed struct {
	Lines    []Line            `json:"lines"`          // 按 TimeMs 升序，TimeMs 唯一
	OffsetMs int64             `json:"offset_ms"`      // 文件声明的全局偏移 [offset:N]
	Tags     map[string]string `json:"tags,omitempty"` // [ti:] [ar:] 等 ID 标签
}

// Empty 表示没有可用的歌词行
func (p Parsed) Empty() bool {
	return len(p.Lines) == 0
}

// Tag 返回 ID 标签的值（键不区分大小写）
func (p Parsed) Tag(key string) string {
	if p.Tags == nil {
		return ""
	}
	return p.Tags[normalizeTagKey(key)]
}
