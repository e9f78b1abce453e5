package loader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/samber/lo"

	"github.com/yleoer/lrcplayer/pkg/converter"
	"github.com/yleoer/lrcplayer/pkg/lyrics"
	"github.com/yleoer/lrcplayer/pkg/metadata"
	"github.com/yleoer/lrcplayer/pkg/track"
	"github.com/yleoer/lrcplayer/pkg/util"
)

var ErrNoLyricsFound = errors.New("no lyrics found")

// Source 是一种获取歌词原文的方式
type Source interface {
	Name() string
	Lyrics(ctx context.Context, t *track.Track) (string, error)
}

// Result 是一次加载的结果
type Result struct {
	Lyrics lyrics.Parsed
	Source string // 提供歌词的来源名称，没有歌词时为空
}

// Loader 按顺序尝试各个来源，第一个给出非空文本的来源胜出
type Loader struct {
	sources   []Source
	converter converter.TextConverter
	logger    *log.Logger
}

// NewLoader 创建一个新的 Loader 实例，nil 来源会被忽略
func NewLoader(tc converter.TextConverter, logger *log.Logger, sources ...Source) *Loader {
	return &Loader{
		sources:   lo.Filter(sources, func(s Source, _ int) bool { return s != nil }),
		converter: tc,
		logger:    logger,
	}
}

// Load 获取并解析音轨的歌词
// 读取失败不会向核心传播：所有来源都失败时返回空歌词和 ErrNoLyricsFound，由调用方决定如何提示
func (l *Loader) Load(ctx context.Context, t *track.Track) (Result, error) {
	var errs []error
	for _, src := range l.sources {
		if err := ctx.Err(); err != nil {
			return Result{Lyrics: lyrics.Parse("")}, err
		}
		text, err := src.Lyrics(ctx, t)
		if err != nil {
			l.logger.Printf("  -> %s: no lyrics for %s: %v", src.Name(), t.DisplayName(), err)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		parsed := lyrics.Parse(l.converter.TradToSim(text))
		if parsed.Empty() {
			l.logger.Printf("Warning: %s returned lyrics for %s without any timestamped line.", src.Name(), t.DisplayName())
			errs = append(errs, fmt.Errorf("%s: no timestamped lines", src.Name()))
			continue
		}
		l.logger.Printf("Loaded %d lyric lines for %s from %s.", len(parsed.Lines), t.DisplayName(), src.Name())
		return Result{Lyrics: parsed, Source: src.Name()}, nil
	}
	return Result{Lyrics: lyrics.Parse("")}, errors.Join(append([]error{ErrNoLyricsFound}, errs...)...)
}

// FileSource 读取同名 .lrc 文件（自动识别 UTF-8/GBK）
type FileSource struct{}

func (FileSource) Name() string { return "file" }

func (FileSource) Lyrics(_ context.Context, t *track.Track) (string, error) {
	if t.LyricPath == "" {
		return "", errors.New("no lyric file")
	}
	return util.ReadTextFileContent(t.LyricPath)
}

// EmbeddedReader 读取音频文件内嵌歌词，由 processor.FFprobeProcessor 实现
type EmbeddedReader interface {
	EmbeddedLyrics(ctx context.Context, audioPath string) (string, error)
}

// EmbeddedSource 从音频标签读取歌词
type EmbeddedSource struct {
	Reader EmbeddedReader
}

func (EmbeddedSource) Name() string { return "embedded" }

func (s EmbeddedSource) Lyrics(ctx context.Context, t *track.Track) (string, error) {
	if t.Path == "" {
		return "", errors.New("no audio file")
	}
	return s.Reader.EmbeddedLyrics(ctx, t.Path)
}

// OnlineSource 从网易云音乐获取歌词
type OnlineSource struct {
	Fetcher metadata.Fetcher
}

func (OnlineSource) Name() string { return "netease" }

func (s OnlineSource) Lyrics(ctx context.Context, t *track.Track) (string, error) {
	if t.Lyrics != "" {
		return t.Lyrics, nil
	}
	return s.Fetcher.FetchForTrack(ctx, t)
}
