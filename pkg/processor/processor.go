package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var ErrNoEmbeddedLyrics = errors.New("no embedded lyrics")

// runFunc 执行外部命令并返回标准输出，测试中可以替换
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// FFprobeProcessor 负责通过 ffprobe 读取音频文件中的标签
type FFprobeProcessor struct {
	ffprobePath string
	logger      *log.Logger
	run         runFunc
}

// NewFFprobeProcessor 创建一个新的 FFprobeProcessor 实例
func NewFFprobeProcessor(ffprobePath string, logger *log.Logger) *FFprobeProcessor {
	return &FFprobeProcessor{ffprobePath: ffprobePath, logger: logger, run: runCommand}
}

type probeOutput struct {
	Format struct {
		Duration string            `json:"duration"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
	Streams []struct {
		Tags map[string]string `json:"tags"`
	} `json:"streams"`
}

// ProbeResult 是一次 ffprobe 得到的信息
type ProbeResult struct {
	Duration time.Duration // 未知时为 0
	Lyrics   string        // 没有内嵌歌词时为空
}

// Probe 读取音频文件的时长和内嵌歌词
func (p *FFprobeProcessor) Probe(ctx context.Context, audioPath string) (*ProbeResult, error) {
	args := buildProbeArgs(audioPath)
	p.logger.Printf("  -> Executing ffprobe... Command: %s %s", p.ffprobePath, strings.Join(args, " "))
	out, err := p.run(ctx, p.ffprobePath, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s: %w", audioPath, err)
	}
	result, err := parseProbeOutput(out)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags of %s: %w", audioPath, err)
	}
	return result, nil
}

// EmbeddedLyrics 读取音频文件中内嵌的歌词标签
func (p *FFprobeProcessor) EmbeddedLyrics(ctx context.Context, audioPath string) (string, error) {
	result, err := p.Probe(ctx, audioPath)
	if err != nil {
		return "", err
	}
	if result.Lyrics == "" {
		return "", ErrNoEmbeddedLyrics
	}
	return result.Lyrics, nil
}

// ProbedFile 复用一次 Probe 的结果读取内嵌歌词，其他路径仍交给 ffprobe
type ProbedFile struct {
	Processor *FFprobeProcessor
	Path      string
	Result    *ProbeResult
}

// EmbeddedLyrics 与 FFprobeProcessor.EmbeddedLyrics 相同，但对已探测的文件不再启动 ffprobe
func (f ProbedFile) EmbeddedLyrics(ctx context.Context, audioPath string) (string, error) {
	if f.Result == nil || audioPath != f.Path {
		return f.Processor.EmbeddedLyrics(ctx, audioPath)
	}
	if f.Result.Lyrics == "" {
		return "", ErrNoEmbeddedLyrics
	}
	return f.Result.Lyrics, nil
}

// buildProbeArgs 构建只输出容器和音频流标签的 ffprobe 参数
func buildProbeArgs(audioPath string) []string {
	return []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"-select_streams", "a:0",
		audioPath,
	}
}

// parseProbeOutput 解析 ffprobe 的 JSON 输出
// 歌词优先取容器标签，其次音频流标签（ogg/opus 把标签放在流上）
func parseProbeOutput(out []byte) (*ProbeResult, error) {
	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, err
	}
	result := &ProbeResult{}
	if secs, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil && secs > 0 {
		result.Duration = time.Duration(secs * float64(time.Second)).Round(time.Millisecond)
	}
	if text, ok := findLyricsTag(probe.Format.Tags); ok {
		result.Lyrics = text
		return result, nil
	}
	for _, s := range probe.Streams {
		if text, ok := findLyricsTag(s.Tags); ok {
			result.Lyrics = text
			break
		}
	}
	return result, nil
}

// findLyricsTag 匹配 lyrics / LYRICS / UNSYNCEDLYRICS / lyrics-eng 等键
func findLyricsTag(tags map[string]string) (string, bool) {
	for key, value := range tags {
		k := strings.ToLower(key)
		if k == "lyrics" || k == "unsyncedlyrics" || strings.HasPrefix(k, "lyrics-") {
			if strings.TrimSpace(value) != "" {
				return value, true
			}
		}
	}
	return "", false
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
