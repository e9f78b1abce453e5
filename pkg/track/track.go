package track

import (
	"path/filepath"
	"strings"
)

// Track 代表一个可播放的音轨以及它的歌词来源
type Track struct {
	Path      string // 音频文件路径；只有歌词文件时为空
	Title     string
	Artist    string
	LyricPath string // 同目录下同名的 .lrc，没有时为空

	// 从网络获取的元数据
	OnlineID int    // 网易云音乐 ID
	Lyrics   string // 已经获取到的歌词文本
}

// Key 是偏好设置使用的标识：优先音频路径，其次歌词路径
func (t *Track) Key() string {
	if t.Path != "" {
		return filepath.Clean(t.Path)
	}
	return filepath.Clean(t.LyricPath)
}

// DisplayName 返回 "艺术家 - 标题"，艺术家未知时只返回标题
func (t *Track) DisplayName() string {
	if t.Artist == "" || t.Artist == UnknownArtist {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}

// LyricFileFor 返回音频文件对应的 .lrc 路径（不检查是否存在）
func LyricFileFor(audioPath string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".lrc"
}

const UnknownArtist = "Unknown Artist"
