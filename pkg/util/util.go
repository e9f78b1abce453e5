package util

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadTextFileContent 智能读取文本文件内容，自动处理UTF-8和GBK编码
// 返回的内容保证是UTF-8编码的字符串。
func ReadTextFileContent(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return DecodeText(data, filepath.Base(path))
}

// DecodeText 将字节按 UTF-8（可带 BOM）或 GBK 解码，name 只用于错误信息
func DecodeText(data []byte, name string) (string, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	gbkReader := transform.NewReader(bytes.NewReader(data), simplifiedchinese.GBK.NewDecoder())
	decodedData, err := io.ReadAll(gbkReader)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s as GBK: %w", name, err)
	}

	return string(decodedData), nil
}

// FormatTimestamp 将毫秒格式化为 mm:ss.fff，负数带上符号
func FormatTimestamp(ms int64) string {
	sign := ""
	if ms < 0 {
		sign = "-"
		ms = -ms
	}
	d := time.Duration(ms) * time.Millisecond
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%s%02d:%02d.%03d", sign, m, s, d/time.Millisecond)
}

// IsDirectory 辅助函数，检查路径是否为目录
func IsDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsAudioFile 判断文件是否为可播放的音频文件
func IsAudioFile(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".wav", ".flac", ".mp3", ".m4a", ".aac", ".ogg", ".ape", ".wv", ".opus":
		return true
	default:
		return false
	}
}

// IsLyricFile 判断文件是否为 LRC 歌词
func IsLyricFile(filePath string) bool {
	return strings.EqualFold(filepath.Ext(filePath), ".lrc")
}
